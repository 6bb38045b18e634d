package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"rig/internal/app"
	"rig/internal/config"
	"rig/internal/environment"
)

var execList bool

// outputSetter is implemented by commands that can write somewhere other
// than stdout.
type outputSetter interface {
	SetOutput(w io.Writer)
}

var execCmd = &cobra.Command{
	Use:   "exec <command> [args...]",
	Short: "Run one of the application's commands",
	Long: `Exec bootstraps the application with command search enabled and runs
the named command. Commands that use the environment receive their
dependencies from the container. Use --list to show the available commands.`,
	RunE: runExec,
}

func init() {
	execCmd.Flags().BoolVarP(&execList, "list", "l", false, "list the available commands")
	execCmd.Flags().SetInterspersed(false)
}

func runExec(cmd *cobra.Command, args []string) error {
	if !execList && len(args) == 0 {
		return fmt.Errorf("a command name is required (use --list to see the available commands)")
	}
	a, err := newApplication(cmd, func(cfg *config.Config) {
		cfg.SearchCommands = true
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	host := app.NewHost("rig")
	if err := a.Start(ctx, host, nil, environment.New("rig")); err != nil {
		return errors.Join(err, a.Shutdown(ctx))
	}

	err = execute(cmd, host, args)
	return errors.Join(err, a.Shutdown(ctx))
}

func execute(cmd *cobra.Command, host *app.Host, args []string) error {
	out := cmd.OutOrStdout()
	if execList {
		for _, c := range host.Commands.All() {
			fmt.Fprintf(out, "%-16s %s\n", c.Name(), c.Description())
		}
		return nil
	}

	c, ok := host.Commands.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q (known: %s)", args[0], strings.Join(host.Commands.Names(), ", "))
	}
	if s, ok := c.(outputSetter); ok {
		s.SetOutput(out)
	}
	return c.Run(cmd.Context(), args[1:])
}
