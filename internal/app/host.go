package app

import "rig/internal/command"

// Host is the runtime that owns the application's commands.
type Host struct {
	Name     string
	Commands *command.Set
}

func NewHost(name string) *Host {
	return &Host{Name: name, Commands: command.NewSet()}
}
