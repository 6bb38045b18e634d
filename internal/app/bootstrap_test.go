package app

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rig/internal/bundle"
	"rig/internal/config"
	"rig/internal/container"
	"rig/internal/environment"
	"rig/internal/errs"
	"rig/internal/installer/core"
	"rig/internal/lifecycle"
	"rig/internal/module"
	"rig/internal/option"
	"rig/internal/registry"
	"rig/internal/report"
	"rig/internal/stat"
)

func run(t *testing.T, b *Builder) *Bootstrap {
	t.Helper()
	boot, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, boot.Run(context.Background(), nil, nil))
	return boot
}

func instance(t *testing.T, boot *Bootstrap, key module.Key) any {
	t.Helper()
	c, err := boot.Container()
	require.NoError(t, err)
	v, err := c.GetInstance(key)
	require.NoError(t, err)
	return v
}

func TestInstallerActivatesRecognizedExtension(t *testing.T) {
	inst := &markerInstaller{}
	ext := &jobExt{name: "nightly"}

	boot := run(t, plainBuilder().Installers(inst).Extensions(ext))

	assert.Equal(t, 1, inst.calls)
	assert.Equal(t, []any{ext}, inst.received)
	assert.Equal(t, []reflect.Type{reflect.TypeOf(ext)}, boot.Items().Enabled(registry.KindExtension))
	assert.Equal(t, 1, boot.Stats().Counter(stat.ExtensionsCount))
}

func TestOverridingModuleReplacesBinding(t *testing.T) {
	boot := run(t, plainBuilder().Modules(rootModule{}).ModulesOverride(overModule{}))

	assert.Equal(t, "b", instance(t, boot, module.KeyOf[string]("k")))
	assert.Equal(t, "root only", instance(t, boot, module.KeyOf[string]("k2")))
}

func TestDuplicateBindingPolicyWithOverrides(t *testing.T) {
	permissive := func() *Builder {
		return plainBuilder().
			Option(option.DenyDuplicateBindings, false).
			Modules(rootModule{}, firstLimit{}, secondLimit{})
	}

	tests := []struct {
		name    string
		builder *Builder
		want    string
	}{
		{"without overrides", permissive(), "a"},
		{"with overrides", permissive().ModulesOverride(overModule{}), "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boot := run(t, tt.builder)
			assert.Equal(t, 1, instance(t, boot, module.KeyOf[int]("limit")))
			assert.Equal(t, tt.want, instance(t, boot, module.KeyOf[string]("k")))
		})
	}

	boot, err := plainBuilder().
		Modules(rootModule{}, firstLimit{}, secondLimit{}).
		ModulesOverride(overModule{}).
		Build()
	require.NoError(t, err)
	err = boot.Run(context.Background(), nil, nil)
	assert.True(t, errs.IsContainer(err))
	assert.ErrorContains(t, err, "already bound")
}

func TestPhasesFireOnceInOrder(t *testing.T) {
	rec := &phaseRecorder{}
	boot, err := plainBuilder().Listen(rec).Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, boot.Initialize(ctx, NewHost("test")))
	require.NoError(t, boot.Run(ctx, nil, nil))
	require.NoError(t, boot.Shutdown(ctx))

	assert.Equal(t, lifecycle.Phases(), rec.phases)
	assert.Equal(t, map[string]bool{boot.RunID(): true}, rec.runs)

	err = boot.Shutdown(ctx)
	assert.True(t, errs.IsState(err))
	assert.Equal(t, lifecycle.Phases(), rec.phases)
}

func TestShutdownRequiresRunningApplication(t *testing.T) {
	rec := &phaseRecorder{}
	boot, err := plainBuilder().Listen(rec).Build()
	require.NoError(t, err)

	err = boot.Shutdown(context.Background())
	assert.True(t, errs.IsState(err))
	assert.Equal(t, []lifecycle.Phase{lifecycle.Configured}, rec.phases)
}

func TestRunTwiceIsStateError(t *testing.T) {
	boot := run(t, plainBuilder())
	err := boot.Run(context.Background(), nil, nil)
	assert.True(t, errs.IsState(err))
}

func TestCommandSearchRequiresScanning(t *testing.T) {
	boot, err := plainBuilder().SearchCommands().Build()
	require.NoError(t, err)

	err = boot.Initialize(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errs.IsPrecondition(err))
	phase, ok := boot.Phase()
	require.True(t, ok)
	assert.Equal(t, lifecycle.Configured, phase)
}

func TestFailedInitializeCannotBeResumed(t *testing.T) {
	rec := &phaseRecorder{}
	boot, err := plainBuilder().SearchCommands().Listen(rec).Build()
	require.NoError(t, err)

	ctx := context.Background()
	initErr := boot.Initialize(ctx, nil)
	require.True(t, errs.IsPrecondition(initErr))

	tests := []struct {
		name string
		call func() error
	}{
		{"initialize", func() error { return boot.Initialize(ctx, nil) }},
		{"run", func() error { return boot.Run(ctx, nil, nil) }},
		{"shutdown", func() error { return boot.Shutdown(ctx) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errs.IsState(err))
			assert.ErrorIs(t, err, initErr)
			assert.Contains(t, err.Error(), "command search requires package scanning")
		})
	}

	assert.Equal(t, []lifecycle.Phase{lifecycle.Configured}, rec.phases)
	assert.Equal(t, initErr, boot.Err())
	assert.False(t, boot.Running())
	_, err = boot.Container()
	assert.True(t, errs.IsState(err))
}

func TestRunWithoutInitializeStopsOnPrecondition(t *testing.T) {
	rec := &phaseRecorder{}
	boot, err := plainBuilder().SearchCommands().Listen(rec).Build()
	require.NoError(t, err)

	ctx := context.Background()
	err = boot.Run(ctx, nil, nil)
	require.True(t, errs.IsPrecondition(err))

	err = boot.Run(ctx, nil, nil)
	assert.True(t, errs.IsState(err))
	assert.True(t, errs.IsPrecondition(err))
	assert.Equal(t, []lifecycle.Phase{lifecycle.Configured}, rec.phases)
}

func TestFailedRunCannotBeResumed(t *testing.T) {
	boot, err := plainBuilder().
		Installers(&markerInstaller{}).
		Extensions(&orphanExt{}).
		Build()
	require.NoError(t, err)

	ctx := context.Background()
	runErr := boot.Run(ctx, nil, nil)
	require.True(t, errs.IsResolution(runErr))

	err = boot.Run(ctx, nil, nil)
	assert.True(t, errs.IsState(err))
	assert.ErrorIs(t, err, runErr)
	assert.True(t, errs.IsState(boot.Shutdown(ctx)))
	assert.False(t, boot.Running())
}

func TestUnrecognizedExtensionFailsBeforeContainer(t *testing.T) {
	boot, err := plainBuilder().
		Installers(&markerInstaller{}).
		Extensions(&orphanExt{}).
		Build()
	require.NoError(t, err)

	err = boot.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsResolution(err))
	assert.Contains(t, err.Error(), "orphanExt")

	_, err = boot.Container()
	assert.True(t, errs.IsState(err))
	phase, _ := boot.Phase()
	assert.Equal(t, lifecycle.BundlesResolved, phase)
}

func TestContainerFailureIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	factory := container.FactoryFunc(func(container.Stage, []module.Module) (container.Container, error) {
		return nil, boom
	})
	boot, err := plainBuilder().ContainerFactory(factory).Build(container.Development)
	require.NoError(t, err)

	err = boot.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsContainer(err))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "development stage")
}

func TestScannedItemsAndSingleCleanup(t *testing.T) {
	inst := &markerInstaller{}
	ext := &jobExt{name: "scanned"}
	scanner := &fakeScanner{values: []any{inst, ext, greet{}, &orphanExt{}}}
	host := NewHost("test")

	boot, err := plainBuilder().
		Scanner(scanner).
		EnableAutoConfig("example.com/app").
		SearchCommands().
		Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, boot.Initialize(ctx, host))
	require.NoError(t, boot.Run(ctx, nil, nil))

	assert.Equal(t, 2, scanner.scans)
	assert.Equal(t, 1, scanner.cleanups)
	assert.Equal(t, []string{"greet"}, host.Commands.Names())
	assert.Equal(t, []any{ext}, inst.received)

	info, ok := boot.Items().Info(registry.KindInstaller, reflect.TypeOf(inst))
	require.True(t, ok)
	assert.Equal(t, registry.ClasspathScan, info.RegisteredBy)
	_, ok = boot.Items().Info(registry.KindExtension, reflect.TypeOf(&orphanExt{}))
	assert.False(t, ok, "scanned values without installer are skipped")
	assert.Equal(t, 2, boot.Stats().Counter(stat.ScanInvocationsCount))
}

func TestCleanupAfterFailedRun(t *testing.T) {
	scanner := &fakeScanner{}
	boot, err := plainBuilder().Scanner(scanner).Extensions(&orphanExt{}).Build()
	require.NoError(t, err)

	require.Error(t, boot.Run(context.Background(), nil, nil))
	assert.Equal(t, 0, scanner.scans)
	assert.Equal(t, 1, scanner.cleanups)
}

func TestAwareModulesAndBootstrapBindings(t *testing.T) {
	aware := &awareModule{}
	env := environment.New("svc")
	cfg := config.Default()

	boot, err := plainBuilder().Modules(aware).Build()
	require.NoError(t, err)
	require.NoError(t, boot.Run(context.Background(), cfg, env))

	assert.Same(t, env, aware.env)
	assert.Equal(t, cfg, aware.cfg)
	require.NotNil(t, aware.options)
	assert.True(t, aware.options.Bool(option.DenyDuplicateBindings))

	assert.Same(t, env, instance(t, boot, module.KeyOf[*environment.Environment]()))
	assert.Equal(t, cfg, instance(t, boot, module.KeyOf[config.Config]()))
	assert.Same(t, boot.Stats(), instance(t, boot, module.KeyOf[*stat.Stats]()))

	items := instance(t, boot, module.KeyOf[Items]()).(Items)
	assert.Contains(t, items.Enabled(registry.KindModule), reflect.TypeOf(aware))
}

func TestCoreInstallersManageEnvironment(t *testing.T) {
	svc := &service{}
	boot, err := New().DisableBundleLookup().Extensions(svc).Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, boot.Run(ctx, nil, nil))
	assert.True(t, svc.started)
	assert.Contains(t, boot.Items().Enabled(registry.KindBundle), reflect.TypeOf(core.Bundle{}))

	require.NoError(t, boot.Shutdown(ctx))
	assert.True(t, svc.stopped)
}

func TestHostBundlesNeedOptIn(t *testing.T) {
	tests := []struct {
		name    string
		optIn   bool
		enabled bool
	}{
		{name: "ignored by default", optIn: false, enabled: false},
		{name: "processed when enabled", optIn: true, enabled: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := plainBuilder().HostBundles(hostBundle{})
			if tt.optIn {
				b.ConfigureFromHostBundles()
			}
			boot := run(t, b)

			_, ok := boot.Items().Info(registry.KindModule, reflect.TypeOf(hostModule{}))
			assert.Equal(t, tt.enabled, ok)
			if tt.enabled {
				assert.Equal(t, "from host", instance(t, boot, module.KeyOf[string]("host")))
				info, _ := boot.Items().Info(registry.KindBundle, reflect.TypeOf(hostBundle{}))
				assert.Equal(t, registry.HostBundle, info.RegisteredBy)
			}
		})
	}
}

func TestBundleLookup(t *testing.T) {
	calls := 0
	lookup := bundle.LookupFunc(func() ([]bundle.Bundle, error) {
		calls++
		return []bundle.Bundle{lookupBundle{}}, nil
	})

	t.Run("looked up bundles are processed", func(t *testing.T) {
		rec := &phaseRecorder{}
		var resolved lifecycle.BundlesResolvedEvent
		listener := lifecycle.On(lifecycle.BundlesResolved, func(ev lifecycle.Event) error {
			resolved = ev.(lifecycle.BundlesResolvedEvent)
			return nil
		})
		boot := run(t, New().NoDefaultInstallers().BundleLookup(lookup).Listen(rec, listener))

		assert.Equal(t, 1, calls)
		assert.Equal(t, "from lookup", instance(t, boot, module.KeyOf[string]("lookup")))
		assert.Equal(t, []reflect.Type{reflect.TypeOf(lookupBundle{})}, resolved.Lookup)
	})

	t.Run("lookup can be disabled", func(t *testing.T) {
		run(t, New().NoDefaultInstallers().BundleLookup(lookup).DisableBundleLookup())
		assert.Equal(t, 1, calls)
	})

	t.Run("lookup failure aborts the run", func(t *testing.T) {
		failing := bundle.LookupFunc(func() ([]bundle.Bundle, error) { return nil, errors.New("catalog offline") })
		boot, err := New().NoDefaultInstallers().BundleLookup(failing).Build()
		require.NoError(t, err)
		err = boot.Run(context.Background(), nil, nil)
		assert.ErrorContains(t, err, "catalog offline")
	})
}

func TestRegistrationsFrozenAfterRun(t *testing.T) {
	b := plainBuilder()
	run(t, b)

	b.Modules(rootModule{})
	b.Option(option.SearchCommands, true)
	err := b.Err()
	require.Error(t, err)
	assert.True(t, errs.IsState(err))
}

func TestDiagnosticsPrintedWhenRunning(t *testing.T) {
	var out bytes.Buffer
	boot := run(t, plainBuilder().
		Modules(rootModule{}).
		PrintDiagnosticInfo(&out, report.Options{Format: report.FormatTable}))

	assert.Contains(t, out.String(), "Startup statistics")
	assert.Contains(t, out.String(), "rootModule")
	require.NoError(t, boot.Shutdown(context.Background()))
}

func TestLifecyclePhasesPrinted(t *testing.T) {
	var out bytes.Buffer
	boot := run(t, plainBuilder().PrintLifecyclePhases(&out, false))

	assert.Contains(t, out.String(), "APPLICATIONRUNNING")
	assert.Contains(t, out.String(), boot.RunID()[:8])
}

func TestListenerFailureStopsRun(t *testing.T) {
	failing := lifecycle.On(lifecycle.InjectionReady, func(lifecycle.Event) error {
		return errors.New("rejected")
	})
	boot, err := plainBuilder().Listen(failing).Build()
	require.NoError(t, err)

	err = boot.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsListener(err))
	_, err = boot.Container()
	assert.True(t, errs.IsState(err))
}
