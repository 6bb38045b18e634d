package cmd

import (
	"github.com/spf13/cobra"

	"rig/internal/app"
	"rig/internal/config"
	"rig/internal/demo"
)

// OptionEnvPrefix prefixes the environment variables read for declared
// options, e.g. RIG_OPT_DEMO_GREETING.
const OptionEnvPrefix = "RIG_OPT_"

// newApplication loads the configuration, lets adjust change it and prepares
// the demo application. Logs go to stderr and reports to stdout.
func newApplication(cmd *cobra.Command, adjust func(cfg *config.Config)) (*app.Application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if len(cfg.Packages) == 0 {
		cfg.Packages = []string{demo.Package}
	}
	if adjust != nil {
		adjust(&cfg)
	}

	b := app.New().
		Bundles(&demo.Bundle{}).
		OptionsFromEnv(OptionEnvPrefix)
	return app.NewApplication(cfg, b, cmd.ErrOrStderr(), cmd.OutOrStdout())
}
