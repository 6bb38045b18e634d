package cmd

import (
	"github.com/spf13/cobra"

	"rig/internal/app"
	"rig/internal/environment"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the application until interrupted",
	Long: `Run bootstraps the application, starts its managed objects and keeps
running until it receives SIGINT or SIGTERM, then shuts down gracefully.`,
	Args: cobra.NoArgs,
	RunE: runApplication,
}

func runApplication(cmd *cobra.Command, _ []string) error {
	a, err := newApplication(cmd, nil)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context(), app.NewHost("rig"), nil, environment.New("rig"))
}
