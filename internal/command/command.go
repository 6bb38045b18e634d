// Package command defines commands contributed to the host CLI.
//
// Commands are either added manually or discovered by the package catalog
// scan. Plain commands run without the application; EnvironmentCommand
// implementations run against the started application and have their
// `inject` tagged fields populated once the container exists.
package command

import (
	"context"
	"fmt"
	"sort"

	"rig/internal/container"
)

// Command is a named CLI action.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, args []string) error
}

// EnvironmentCommand is a Command that needs the container.
type EnvironmentCommand interface {
	Command
	UsesEnvironment()
}

// InEnvironment marks an embedding command as an EnvironmentCommand.
type InEnvironment struct{}

func (InEnvironment) UsesEnvironment() {}

// Set holds commands by unique name.
type Set struct {
	commands []Command
	byName   map[string]Command
}

func NewSet() *Set {
	return &Set{byName: make(map[string]Command)}
}

// Add registers cmd. Adding the same instance again is a no-op; a different
// command with a taken name is an error.
func (s *Set) Add(cmd Command) error {
	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("command %T has no name", cmd)
	}
	if existing, ok := s.byName[name]; ok {
		if fmt.Sprintf("%T", existing) == fmt.Sprintf("%T", cmd) {
			return nil
		}
		return fmt.Errorf("command name %q used by %T and %T", name, existing, cmd)
	}
	s.byName[name] = cmd
	s.commands = append(s.commands, cmd)
	return nil
}

// Get finds a command by name.
func (s *Set) Get(name string) (Command, bool) {
	cmd, ok := s.byName[name]
	return cmd, ok
}

// All returns commands in registration order.
func (s *Set) All() []Command {
	return append([]Command(nil), s.commands...)
}

// Names returns command names sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Discover picks the commands out of scanned values.
func Discover(values []any) []Command {
	var out []Command
	for _, v := range values {
		if cmd, ok := v.(Command); ok {
			out = append(out, cmd)
		}
	}
	return out
}

// InjectEnvironmentCommands populates the environment commands among cmds.
func InjectEnvironmentCommands(c container.Container, cmds []Command) error {
	for _, cmd := range cmds {
		if _, ok := cmd.(EnvironmentCommand); !ok {
			continue
		}
		if err := c.InjectMembers(cmd); err != nil {
			return fmt.Errorf("command %s: %w", cmd.Name(), err)
		}
	}
	return nil
}
