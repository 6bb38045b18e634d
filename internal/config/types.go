package config

import "rig/internal/tracing"

// Config is the top-level configuration structure for rig.
type Config struct {
	Packages                 []string          `yaml:"packages,omitempty"`
	SearchCommands           bool              `yaml:"searchCommands"`
	UseCoreInstallers        bool              `yaml:"useCoreInstallers"`
	ConfigureFromHostBundles bool              `yaml:"configureFromHostBundles"`
	BundleLookup             bool              `yaml:"bundleLookup"`
	Stage                    string            `yaml:"stage"`
	Options                  map[string]string `yaml:"options,omitempty"`
	Logging                  LoggingConfig     `yaml:"logging"`
	Tracing                  tracing.Config    `yaml:"tracing"`
	Report                   ReportConfig      `yaml:"report"`
	Metrics                  MetricsConfig     `yaml:"metrics"`
	SystemdNotify            bool              `yaml:"systemdNotify"`
}

// LoggingConfig selects log level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ReportConfig controls diagnostic output printed during startup.
type ReportConfig struct {
	Diagnostics     bool   `yaml:"diagnostics"`
	LifecyclePhases bool   `yaml:"lifecyclePhases"`
	Detailed        bool   `yaml:"detailed"`
	Format          string `yaml:"format"`
	Color           bool   `yaml:"color"`
}

// MetricsConfig exposes bootstrap statistics over HTTP when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
	Path   string `yaml:"path,omitempty"`
}
