package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"rig/internal/app"
	"rig/internal/config"
	"rig/internal/container"
	"rig/internal/environment"
	"rig/internal/report"
)

var (
	describeOutput string
	describeColor  bool
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Bootstrap in tool stage and print the startup report",
	Long: `Describe runs the full bootstrap in the tool stage, prints statistics,
options, registered items, installers and the registration tree, and shuts
the application down again.`,
	Args: cobra.NoArgs,
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().StringVarP(&describeOutput, "output", "o", "table", "output format: table, json or yaml")
	describeCmd.Flags().BoolVar(&describeColor, "color", false, "colorize table output")
}

func runDescribe(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(describeOutput)
	if err != nil {
		return err
	}
	a, err := newApplication(cmd, func(cfg *config.Config) {
		cfg.Stage = container.Tool.String()
		cfg.Report.Diagnostics = false
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := a.Start(ctx, app.NewHost("rig"), nil, environment.New("rig")); err != nil {
		return errors.Join(err, a.Shutdown(ctx))
	}
	r := report.New(cmd.OutOrStdout(), report.Options{Format: format, Color: describeColor})
	return errors.Join(r.Diagnostics(a.Bootstrap().ReportInput()), a.Shutdown(ctx))
}
