package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"rig/internal/config"
	"rig/internal/errs"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodePrecondition indicates invalid configuration or registration.
	ExitCodePrecondition = 2
	// ExitCodeResolution indicates an extension no installer recognizes.
	ExitCodeResolution = 3
	// ExitCodeContainer indicates the container could not be created.
	ExitCodeContainer = 4
)

var (
	cfgFile string
	v       = viper.New()
)

// rootCmd represents the base command for the rig application.
var rootCmd = &cobra.Command{
	Use:   "rig",
	Short: "Bootstrap and run a rig application",
	Long: `rig assembles an application from bundles, modules, installers and
extensions, creates its container and runs it through a fixed lifecycle.

Settings come from the configuration file, RIG_* environment variables and
flags, in increasing order of precedence.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "rig version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var validation config.ValidationErrors
	switch {
	case errs.IsPrecondition(err), errors.As(err, &validation):
		return ExitCodePrecondition
	case errs.IsResolution(err):
		return ExitCodeResolution
	case errs.IsContainer(err):
		return ExitCodeContainer
	default:
		return ExitCodeError
	}
}

// loadConfig reads the configuration file and applies environment variables
// and flags on top of it.
func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if v.IsSet("packages") {
		cfg.Packages = v.GetStringSlice("packages")
	}
	if v.IsSet("stage") {
		cfg.Stage = v.GetString("stage")
	}
	if v.IsSet("searchCommands") {
		cfg.SearchCommands = v.GetBool("searchCommands")
	}
	if v.IsSet("bundleLookup") {
		cfg.BundleLookup = v.GetBool("bundleLookup")
	}
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("logging.format") {
		cfg.Logging.Format = v.GetString("logging.format")
	}
	if v.IsSet("report.diagnostics") {
		cfg.Report.Diagnostics = v.GetBool("report.diagnostics")
	}
	if v.IsSet("report.lifecyclePhases") {
		cfg.Report.LifecyclePhases = v.GetBool("report.lifecyclePhases")
	}
	if v.IsSet("metrics.listen") {
		cfg.Metrics.Listen = v.GetString("metrics.listen")
	}
	if v.IsSet("systemdNotify") {
		cfg.SystemdNotify = v.GetBool("systemdNotify")
	}
	return cfg, nil
}

func bindFlag(flags *pflag.FlagSet, key, flag string) {
	_ = v.BindPFlag(key, flags.Lookup(flag))
}

func init() {
	v.SetEnvPrefix("RIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/rig/config.yaml)")
	flags.StringSlice("packages", nil, "packages to scan for installers, extensions and commands")
	flags.String("stage", "", "container stage: production, development or tool")
	flags.Bool("search-commands", false, "discover commands in the scanned packages")
	flags.Bool("bundle-lookup", true, "load bundles named in RIG_BUNDLES and automatic catalog bundles")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.Bool("diagnostics", false, "print the startup report once the application runs")
	flags.Bool("phases", false, "print a banner for every lifecycle phase")
	flags.String("metrics-listen", "", "serve bootstrap metrics on this address")
	flags.Bool("systemd-notify", false, "notify systemd about readiness and shutdown")

	bindFlag(flags, "packages", "packages")
	bindFlag(flags, "stage", "stage")
	bindFlag(flags, "searchCommands", "search-commands")
	bindFlag(flags, "bundleLookup", "bundle-lookup")
	bindFlag(flags, "logging.level", "log-level")
	bindFlag(flags, "logging.format", "log-format")
	bindFlag(flags, "report.diagnostics", "diagnostics")
	bindFlag(flags, "report.lifecyclePhases", "phases")
	bindFlag(flags, "metrics.listen", "metrics-listen")
	bindFlag(flags, "systemdNotify", "systemd-notify")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(execCmd)
}
