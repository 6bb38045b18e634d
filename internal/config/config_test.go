package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
packages: [rig/internal/demo]
searchCommands: true
stage: development
bundleLookup: false
options:
  installers.HealthCheckNamesUnique: "false"
logging:
  level: debug
report:
  diagnostics: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"rig/internal/demo"}, cfg.Packages)
	assert.True(t, cfg.SearchCommands)
	assert.True(t, cfg.UseCoreInstallers, "unset keys keep defaults")
	assert.False(t, cfg.BundleLookup)
	assert.Equal(t, "development", cfg.Stage)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.Report.Diagnostics)
	assert.Equal(t, "table", cfg.Report.Format)
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "packages: [unterminated")
	_, err := Load(path)

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "parse", ce.ErrorType)
	assert.Contains(t, err.Error(), "config.yaml")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Packages = []string{"a/b"}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Packages, loaded.Packages)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:   "search commands without packages",
			mutate: func(c *Config) { c.SearchCommands = true },
			fields: []string{"searchCommands"},
		},
		{
			name: "several problems",
			mutate: func(c *Config) {
				c.Packages = []string{" "}
				c.Stage = "staging"
				c.Options = map[string]string{"rig.Nope": "1"}
				c.Logging.Level = "loud"
				c.Logging.Format = "xml"
				c.Report.Format = "html"
			},
			fields: []string{"packages", "stage", "options", "logging.level", "logging.format", "report.format"},
		},
		{
			name: "tracing",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "file"
				c.Tracing.SampleRate = 2
			},
			fields: []string{"tracing.filePath", "tracing.sampleRate"},
		},
		{
			name: "metrics path",
			mutate: func(c *Config) {
				c.Metrics.Listen = ":9464"
				c.Metrics.Path = "metrics"
			},
			fields: []string{"metrics.path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			var got []string
			for _, ve := range verrs {
				got = append(got, ve.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}
