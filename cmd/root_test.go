package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rig/internal/config"
	"rig/internal/errs"
)

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "rig", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestSubcommands(t *testing.T) {
	found := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range []string{"version", "run", "describe", "exec"} {
		assert.True(t, found[name], "missing subcommand %s", name)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "precondition", err: errs.Precondition("initialize", "no packages"), want: ExitCodePrecondition},
		{name: "invalid config", err: fmt.Errorf("invalid configuration: %w", config.ValidationErrors{{Field: "stage", Message: "unknown"}}), want: ExitCodePrecondition},
		{name: "resolution", err: errors.Join(&errs.ResolutionError{ItemType: "*x.Ext", Reason: "unclaimed"}), want: ExitCodeResolution},
		{name: "container", err: &errs.ContainerError{Phase: "production stage", Err: errors.New("boom")}, want: ExitCodeContainer},
		{name: "other", err: errors.New("boom"), want: ExitCodeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stage: development\nlogging:\n  level: warn\n"), 0o600))

	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })
	t.Setenv("RIG_LOGGING_LEVEL", "debug")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Stage)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.UseCoreInstallers)
}

// runRoot runs the root command with args and returns its stdout.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{args[0], "--config", filepath.Join(t.TempDir(), "missing.yaml")}, args[1:]...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDescribeCommand(t *testing.T) {
	t.Cleanup(func() { describeOutput = "table" })

	out, err := runRoot(t, "describe", "--output", "json")
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary), out)
	assert.Contains(t, out, "demo.Ticker")
	assert.Contains(t, out, "core.ManagedInstaller")
}

func TestExecCommand(t *testing.T) {
	out, err := runRoot(t, "exec", "greet", "tester")
	require.NoError(t, err)
	assert.Equal(t, "hello, tester\n", out)
}

func TestExecCommandList(t *testing.T) {
	t.Cleanup(func() { execList = false })

	out, err := runRoot(t, "exec", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "greet")
	assert.Contains(t, out, "print a greeting")
}

func TestExecUnknownCommand(t *testing.T) {
	_, err := runRoot(t, "exec", "fly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "fly"`)
}
