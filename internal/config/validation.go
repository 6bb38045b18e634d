package config

import (
	"strings"

	"rig/internal/container"
	"rig/internal/option"
	"rig/internal/report"
	"rig/pkg/logging"
)

// Validate checks every field and returns ValidationErrors, or nil.
func (c Config) Validate() error {
	var errs ValidationErrors

	for i, p := range c.Packages {
		if strings.TrimSpace(p) == "" {
			errs.Add("packages", "must not contain empty entries", i)
		}
	}
	if c.SearchCommands && len(c.Packages) == 0 {
		errs.Add("searchCommands", "requires at least one package to scan")
	}
	if _, err := container.ParseStage(c.Stage); err != nil {
		errs.Add("stage", "must be production, development or tool", c.Stage)
	}
	for id := range c.Options {
		if _, ok := option.Lookup(id); !ok {
			errs.Add("options", "unknown option "+id, id)
		}
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		errs.Add("logging.level", "must be debug, info, warn or error", c.Logging.Level)
	}
	switch logging.Format(c.Logging.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		errs.Add("logging.format", "must be text or json", c.Logging.Format)
	}
	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		errs.Add("report.format", err.Error(), c.Report.Format)
	}
	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "", "stdout", "none":
		case "file":
			if c.Tracing.FilePath == "" {
				errs.Add("tracing.filePath", "is required for the file exporter")
			}
		default:
			errs.Add("tracing.exporter", "must be stdout, file or none", c.Tracing.Exporter)
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			errs.Add("tracing.sampleRate", "must be between 0 and 1", c.Tracing.SampleRate)
		}
	}
	if c.Metrics.Listen != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs.Add("metrics.path", "must start with /", c.Metrics.Path)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
