package config

import "rig/internal/tracing"

const (
	DefaultStage       = "production"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultMetricsPath = "/metrics"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		UseCoreInstallers: true,
		BundleLookup:      true,
		Stage:             DefaultStage,
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Tracing: tracing.DefaultConfig(),
		Report: ReportConfig{
			Format: "table",
			Color:  true,
		},
		Metrics: MetricsConfig{
			Path: DefaultMetricsPath,
		},
	}
}
