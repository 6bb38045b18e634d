package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"rig/internal/command"
	"rig/internal/container"
	"rig/internal/environment"
	"rig/internal/errs"
	"rig/internal/installer"
	"rig/internal/installer/core"
	"rig/internal/lifecycle"
	"rig/internal/module"
	"rig/internal/option"
	"rig/internal/registry"
	"rig/internal/report"
	"rig/internal/scan"
	"rig/internal/stat"
	"rig/internal/tracing"
	"rig/pkg/logging"
)

// Bootstrap runs one application through its lifecycle. It is created by
// Builder.Build and is not safe for concurrent use.
type Bootstrap struct {
	b       *Builder
	runID   string
	scanner scan.Scanner
	tracer  *tracing.Provider

	initialized bool
	ran         bool
	failed      error
	commands    []command.Command
	lookedUp    []reflect.Type
	plan        *installer.Plan
	container   container.Container
	env         *environment.Environment
	cleanup     sync.Once
}

func newBootstrap(b *Builder) *Bootstrap {
	boot := &Bootstrap{
		b:       b,
		runID:   uuid.NewString(),
		scanner: b.scanner,
		tracer:  b.tracer,
	}
	if boot.scanner == nil {
		boot.scanner = scan.NewCatalogScanner(nil)
	}
	if boot.tracer == nil {
		// A disabled configuration never fails.
		boot.tracer, _ = tracing.NewProvider(tracing.Config{})
	}
	if b.diagnostics != nil {
		b.events.Listen(lifecycle.On(lifecycle.ApplicationRunning, boot.printDiagnostics))
	}
	return boot
}

// RunID identifies this bootstrap in events and logs.
func (boot *Bootstrap) RunID() string {
	return boot.runID
}

// Items returns a read-only view of the registrations.
func (boot *Bootstrap) Items() Items {
	return Items{reg: boot.b.registry}
}

// Options returns the option reader.
func (boot *Bootstrap) Options() option.Reader {
	return boot.b.options
}

func (boot *Bootstrap) Stats() *stat.Stats {
	return boot.b.stats
}

// Phase returns the last announced lifecycle phase.
func (boot *Bootstrap) Phase() (lifecycle.Phase, bool) {
	return boot.b.events.Current()
}

// Running reports whether the application reached ApplicationRunning
// without failing and has not started shutting down.
func (boot *Bootstrap) Running() bool {
	return boot.failed == nil &&
		boot.b.events.Reached(lifecycle.ApplicationRunning) &&
		!boot.b.events.Reached(lifecycle.ShutdownStarted)
}

// Err returns the error that failed Initialize or Run, if any. A failed
// bootstrap refuses every further operation.
func (boot *Bootstrap) Err() error {
	return boot.failed
}

// Commands returns the enabled commands once Initialize has run.
func (boot *Bootstrap) Commands() []command.Command {
	return append([]command.Command(nil), boot.commands...)
}

// Plan returns the installer assignment once extensions were resolved.
func (boot *Bootstrap) Plan() *installer.Plan {
	return boot.plan
}

// Container returns the container created by Run.
func (boot *Bootstrap) Container() (container.Container, error) {
	if boot.container == nil {
		return nil, errs.State("container", "container has not been created yet")
	}
	return boot.container, nil
}

// ReportInput returns everything the diagnostic report covers.
func (boot *Bootstrap) ReportInput() report.Input {
	return report.Input{
		Registry: boot.b.registry,
		Options:  boot.b.options,
		Stats:    boot.b.stats,
		Plan:     boot.plan,
	}
}

func (boot *Bootstrap) header() lifecycle.Header {
	return lifecycle.Header{RunID: boot.runID}
}

func (boot *Bootstrap) fire(ev lifecycle.Event) error {
	t := boot.b.stats.Timer(stat.ListenersTime)
	defer t.Stop()
	return boot.b.events.Fire(ev)
}

func (boot *Bootstrap) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := boot.tracer.Start(ctx, name, append(attrs, attribute.String("rig.run_id", boot.runID))...)
	return ctx, func(err error) { tracing.End(span, err) }
}

func (boot *Bootstrap) scan(ctx context.Context, packages []string) ([]any, error) {
	t := boot.b.stats.Timer(stat.ScanTime)
	defer t.Stop()
	values, err := boot.scanner.Scan(ctx, packages)
	if err != nil {
		return nil, err
	}
	boot.b.stats.Count(stat.ScanInvocationsCount, 1)
	boot.b.stats.Count(stat.ScannedValuesCount, len(values))
	return values, nil
}

func (boot *Bootstrap) cleanupScanner() {
	boot.cleanup.Do(func() {
		boot.scanner.Cleanup()
		logging.Debug("Scanner", "Scanner resources released")
	})
}

// Initialize discovers commands and registers every enabled command with
// host. host may be nil. Run calls Initialize itself when it was skipped.
func (boot *Bootstrap) Initialize(ctx context.Context, host *Host) error {
	if boot.failed != nil {
		return errs.Failed("initialize", boot.failed)
	}
	if boot.initialized {
		return errs.State("initialize", "bootstrap already initialized")
	}
	boot.initialized = true

	total := boot.b.stats.Timer(stat.BootstrapTime)
	defer total.Stop()
	t := boot.b.stats.Timer(stat.InitializationTime)
	defer t.Stop()

	ctx, end := boot.span(ctx, "initialize")
	err := boot.initialize(ctx, host)
	end(err)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize application")
		boot.failed = err
		boot.cleanupScanner()
	}
	return err
}

func (boot *Bootstrap) initialize(ctx context.Context, host *Host) error {
	reg := boot.b.registry
	options := boot.b.options

	if options.Bool(option.SearchCommands) {
		packages := options.Strings(option.ScanPackages)
		if len(packages) == 0 {
			return errs.Precondition("initialize", "command search requires package scanning, call EnableAutoConfig first")
		}
		t := boot.b.stats.Timer(stat.CommandTime)
		values, err := boot.scan(ctx, packages)
		if err != nil {
			t.Stop()
			return fmt.Errorf("failed to scan commands: %w", err)
		}
		for _, cmd := range command.Discover(values) {
			if _, err := reg.Register(registry.KindCommand, cmd, registry.ClasspathScan); err != nil {
				t.Stop()
				return err
			}
		}
		t.Stop()
	}

	boot.commands = nil
	names := make([]string, 0)
	for _, v := range registry.Instances(reg.Resolve(registry.KindCommand)) {
		cmd := v.(command.Command)
		boot.commands = append(boot.commands, cmd)
		names = append(names, cmd.Name())
		if host == nil {
			continue
		}
		if err := host.Commands.Add(cmd); err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name(), err)
		}
	}
	boot.b.stats.Count(stat.CommandsCount, len(boot.commands))
	logging.Debug("Bootstrap", "Initialized with %d commands", len(boot.commands))

	return boot.fire(lifecycle.InitializationEvent{Header: boot.header(), Commands: names})
}

// Run performs the startup sequence up to ApplicationRunning. configuration
// is handed to ConfigurationAware modules and bound in the container; env
// defaults to a new environment named "rig".
func (boot *Bootstrap) Run(ctx context.Context, configuration any, env *environment.Environment) (err error) {
	if boot.failed != nil {
		return errs.Failed("run", boot.failed)
	}
	if boot.ran {
		return errs.State("run", "bootstrap already ran")
	}
	boot.ran = true
	if !boot.initialized {
		if err := boot.Initialize(ctx, nil); err != nil {
			return err
		}
	}
	if env == nil {
		env = environment.New("rig")
	}
	boot.env = env

	logging.With(slog.String("run", boot.runID))
	logging.Info("Bootstrap", "Starting application %s", env.Name())
	started := time.Now()

	total := boot.b.stats.Timer(stat.BootstrapTime)
	defer total.Stop()
	t := boot.b.stats.Timer(stat.RunTime)
	defer t.Stop()

	ctx, end := boot.span(ctx, "run", attribute.String("rig.environment", env.Name()))
	defer func() { end(err) }()
	defer boot.cleanupScanner()

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"run start", func(context.Context) error {
			return boot.fire(lifecycle.RunStartedEvent{Header: boot.header(), Configuration: configuration, Environment: env})
		}},
		{"bundle resolution", boot.resolveBundles},
		{"extension resolution", boot.resolveExtensions},
		{"container creation", func(ctx context.Context) error { return boot.createContainer(ctx, configuration) }},
		{"extension activation", boot.activate},
		{"application start", func(ctx context.Context) error { return boot.start(ctx, started) }},
	}
	for _, step := range steps {
		if err = step.fn(ctx); err != nil {
			logging.Error("Bootstrap", err, "Application startup failed during %s", step.name)
			boot.failed = err
			return err
		}
	}
	return nil
}

func (boot *Bootstrap) resolveBundles(ctx context.Context) (err error) {
	t := boot.b.stats.Timer(stat.BundleTime)
	defer t.Stop()
	_, end := boot.span(ctx, "bundles")
	defer func() { end(err) }()

	options := boot.b.options
	p := boot.b.processor

	if options.Bool(option.UseCoreInstallers) {
		if err := p.Add(core.Bundle{}, registry.Application); err != nil {
			return err
		}
	}
	if options.Bool(option.ConfigureFromHostBundles) {
		for _, hb := range boot.b.hostBundles {
			if err := p.Add(hb, registry.HostBundle); err != nil {
				return err
			}
		}
	} else if len(boot.b.hostBundles) > 0 {
		logging.Debug("Bundles", "Ignoring %d host bundles", len(boot.b.hostBundles))
	}
	if options.Bool(option.UseBundleLookup) {
		lt := boot.b.stats.Timer(stat.BundleLookupTime)
		found, err := boot.b.lookup.Lookup()
		lt.Stop()
		if err != nil {
			return fmt.Errorf("bundle lookup failed: %w", err)
		}
		for _, bn := range found {
			if err := p.Add(bn, registry.Lookup); err != nil {
				return err
			}
			boot.lookedUp = append(boot.lookedUp, registry.TypeOf(bn))
		}
	}

	if err := p.Process(); err != nil {
		return err
	}
	processed := p.Processed()
	boot.b.stats.Count(stat.BundlesProcessedCount, len(processed))
	logging.Info("Bundles", "Processed %d bundles", len(processed))

	return boot.fire(lifecycle.BundlesResolvedEvent{
		Header:   boot.header(),
		Bundles:  processed,
		Disabled: boot.Items().Disabled(registry.KindBundle),
		Lookup:   append([]reflect.Type(nil), boot.lookedUp...),
	})
}

func (boot *Bootstrap) installers() []installer.Installer {
	infos := boot.b.registry.Resolve(registry.KindInstaller)
	out := make([]installer.Installer, len(infos))
	for i, info := range infos {
		out[i] = info.Instance.(installer.Installer)
	}
	return out
}

func (boot *Bootstrap) resolveExtensions(ctx context.Context) (err error) {
	reg := boot.b.registry
	_, end := boot.span(ctx, "extensions")
	defer func() { end(err) }()

	if packages := boot.b.options.Strings(option.ScanPackages); len(packages) > 0 {
		values, err := boot.scan(ctx, packages)
		if err != nil {
			return fmt.Errorf("failed to scan packages: %w", err)
		}
		var candidates []any
		for _, v := range values {
			switch v.(type) {
			case installer.Installer:
				if _, err := reg.Register(registry.KindInstaller, v, registry.ClasspathScan); err != nil {
					return err
				}
			case command.Command:
			default:
				candidates = append(candidates, v)
			}
		}
		installers := boot.installers()
		for _, v := range candidates {
			if !installer.Recognizes(installers, v) {
				logging.Debug("Scanner", "Skipping %T, no installer recognizes it", v)
				continue
			}
			if _, err := reg.Register(registry.KindExtension, v, registry.ClasspathScan); err != nil {
				return err
			}
		}
	}

	t := boot.b.stats.Timer(stat.ExtensionsResolutionTime)
	defer t.Stop()
	installers := boot.installers()
	extensions := registry.Instances(reg.Resolve(registry.KindExtension))
	plan, err := installer.Match(installers, extensions)
	if err != nil {
		return err
	}
	boot.plan = plan
	boot.b.stats.Count(stat.InstallersCount, len(installers))
	boot.b.stats.Count(stat.ExtensionsCount, len(extensions))
	return nil
}

func modules(infos []*registry.Info) []module.Module {
	out := make([]module.Module, len(infos))
	for i, info := range infos {
		out[i] = info.Instance.(module.Module)
	}
	return out
}

func (boot *Bootstrap) createContainer(ctx context.Context, configuration any) error {
	reg := boot.b.registry
	options := boot.b.options

	mt := boot.b.stats.Timer(stat.ModulesTime)
	bm := &bootstrapModule{
		env:           boot.env,
		configuration: configuration,
		options:       options,
		stats:         boot.b.stats,
		items:         boot.Items(),
	}
	if _, err := reg.Register(registry.KindModule, bm, registry.Application); err != nil {
		mt.Stop()
		return err
	}
	normal := reg.Resolve(registry.KindModule)
	overriding := reg.ResolveOverrides()
	roots, overrides := modules(normal), modules(overriding)
	injectAware(roots, boot.env, configuration, options)
	injectAware(overrides, boot.env, configuration, options)
	boot.b.stats.Count(stat.ModulesCount, len(roots))
	boot.b.stats.Count(stat.OverridingModulesCount, len(overrides))
	mt.Stop()

	err := boot.fire(lifecycle.InjectionReadyEvent{
		Header:            boot.header(),
		Modules:           types(normal),
		OverridingModules: types(overriding),
		Installers:        types(reg.Resolve(registry.KindInstaller)),
		Extensions:        types(reg.Resolve(registry.KindExtension)),
	})
	if err != nil {
		return err
	}

	reg.Freeze()
	options.Freeze()

	all := roots
	if len(overrides) > 0 {
		all = []module.Module{module.Override(roots, overrides)}
	}
	stage := options.Stage(option.ContainerStage)
	factory := boot.b.factory
	if factory == nil {
		factory = &container.DefaultFactory{PermitDuplicates: !options.Bool(option.DenyDuplicateBindings)}
	}

	ct := boot.b.stats.Timer(stat.ContainerCreationTime)
	_, end := boot.span(ctx, "container", attribute.String("rig.stage", stage.String()))
	c, err := factory.Create(stage, all)
	elapsed := ct.Stop()
	if err != nil {
		err = &errs.ContainerError{Phase: stage.String() + " stage", Elapsed: elapsed, Err: err}
		end(err)
		return err
	}
	end(nil)
	boot.container = c
	logging.Info("Bootstrap", "Container created in %s (%s stage, %d modules)", elapsed, stage, len(roots))

	return boot.fire(lifecycle.ContainerCreatedEvent{Header: boot.header(), Container: c, Elapsed: elapsed})
}

func (boot *Bootstrap) activate(ctx context.Context) (err error) {
	t := boot.b.stats.Timer(stat.ExtensionsActivationTime)
	defer t.Stop()
	_, end := boot.span(ctx, "activation")
	defer func() { end(err) }()

	target := installer.Target{
		Container:   boot.container,
		Environment: boot.env,
		Options:     boot.b.options,
	}
	if err := boot.plan.Activate(target); err != nil {
		return err
	}

	var installed []lifecycle.Installation
	for _, s := range boot.plan.Steps() {
		if len(s.Extensions) == 0 {
			continue
		}
		in := lifecycle.Installation{Installer: reflect.TypeOf(s.Installer)}
		for _, ext := range s.Extensions {
			in.Extensions = append(in.Extensions, registry.TypeOf(ext))
		}
		installed = append(installed, in)
	}
	return boot.fire(lifecycle.ExtensionsInstalledEvent{Header: boot.header(), Installed: installed})
}

func (boot *Bootstrap) start(ctx context.Context, started time.Time) error {
	if err := command.InjectEnvironmentCommands(boot.container, boot.commands); err != nil {
		return fmt.Errorf("failed to inject environment commands: %w", err)
	}
	boot.cleanupScanner()

	if err := boot.env.Start(ctx); err != nil {
		return fmt.Errorf("failed to start environment: %w", err)
	}

	elapsed := time.Since(started)
	logging.Info("Bootstrap", "Application %s running after %s", boot.env.Name(), elapsed.Round(time.Millisecond))
	if err := boot.fire(lifecycle.ApplicationRunningEvent{Header: boot.header(), Elapsed: elapsed}); err != nil {
		return errors.Join(err, boot.env.Stop(ctx))
	}
	return nil
}

func (boot *Bootstrap) printDiagnostics(lifecycle.Event) error {
	return report.New(boot.b.diagOut, *boot.b.diagnostics).Diagnostics(boot.ReportInput())
}

// Shutdown stops the environment between ShutdownStarted and
// ShutdownComplete. It fails with a state error unless the application
// reached ApplicationRunning.
func (boot *Bootstrap) Shutdown(ctx context.Context) (err error) {
	if boot.failed != nil {
		return errs.Failed("shutdown", boot.failed)
	}
	if !boot.b.events.Reached(lifecycle.ApplicationRunning) {
		return errs.State("shutdown", "application is not running")
	}
	t := boot.b.stats.Timer(stat.ShutdownTime)
	defer t.Stop()
	ctx, end := boot.span(ctx, "shutdown")
	defer func() { end(err) }()

	if err := boot.fire(lifecycle.ShutdownStartedEvent{Header: boot.header()}); err != nil {
		return err
	}
	logging.Info("Bootstrap", "Stopping application %s", boot.env.Name())
	stopErr := boot.env.Stop(ctx)
	if stopErr != nil {
		logging.Error("Bootstrap", stopErr, "Failed to stop managed objects")
	}
	if err := boot.fire(lifecycle.ShutdownCompleteEvent{Header: boot.header(), Err: stopErr}); err != nil {
		return errors.Join(stopErr, err)
	}
	return stopErr
}
