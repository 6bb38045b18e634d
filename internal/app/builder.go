package app

import (
	"errors"
	"io"

	"rig/internal/bundle"
	"rig/internal/command"
	"rig/internal/config"
	"rig/internal/container"
	"rig/internal/errs"
	"rig/internal/installer"
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

// Builder collects the application's registrations and startup options.
// Methods record their errors; Build reports them all at once.
type Builder struct {
	registry  *registry.Registry
	options   *option.Store
	events    *lifecycle.Broadcaster
	processor *bundle.Processor
	stats     *stat.Stats

	source      registry.Source
	hostBundles []bundle.Bundle
	lookup      bundle.Lookup
	factory     container.Factory
	scanner     scan.Scanner
	tracer      *tracing.Provider

	diagnostics *report.Options
	diagOut     io.Writer

	errs  []error
	built bool
}

// New returns an empty builder.
func New() *Builder {
	reg := registry.New()
	options := option.NewStore()
	events := lifecycle.NewBroadcaster()
	return &Builder{
		registry:  reg,
		options:   options,
		events:    events,
		processor: bundle.NewProcessor(reg, options, events),
		stats:     stat.New(),
		source:    registry.Application,
		lookup:    bundle.DefaultLookup(),
	}
}

func (b *Builder) record(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

func (b *Builder) requireAny(op string, n int) bool {
	if n == 0 {
		b.record(errs.Precondition(op, "at least one value is required"))
		return false
	}
	return true
}

// Modules registers normal modules.
func (b *Builder) Modules(modules ...module.Module) *Builder {
	if !b.requireAny("modules", len(modules)) {
		return b
	}
	for _, m := range modules {
		_, err := b.registry.Register(registry.KindModule, m, b.source)
		b.record(err)
	}
	return b
}

// ModulesOverride registers modules whose bindings replace those of the
// normal modules.
func (b *Builder) ModulesOverride(modules ...module.Module) *Builder {
	if !b.requireAny("modules override", len(modules)) {
		return b
	}
	for _, m := range modules {
		_, err := b.registry.RegisterOverride(m, b.source)
		b.record(err)
	}
	return b
}

func (b *Builder) Installers(installers ...installer.Installer) *Builder {
	if !b.requireAny("installers", len(installers)) {
		return b
	}
	for _, in := range installers {
		_, err := b.registry.Register(registry.KindInstaller, in, b.source)
		b.record(err)
	}
	return b
}

// Extensions registers extensions. Every one must be recognized by an
// enabled installer.
func (b *Builder) Extensions(extensions ...any) *Builder {
	if !b.requireAny("extensions", len(extensions)) {
		return b
	}
	for _, ext := range extensions {
		_, err := b.registry.Register(registry.KindExtension, ext, b.source)
		b.record(err)
	}
	return b
}

// Bundles registers bundles. They are expanded during Run.
func (b *Builder) Bundles(bundles ...bundle.Bundle) *Builder {
	if !b.requireAny("bundles", len(bundles)) {
		return b
	}
	for _, bn := range bundles {
		b.record(b.processor.Add(bn, b.source))
	}
	return b
}

func (b *Builder) Commands(commands ...command.Command) *Builder {
	if !b.requireAny("commands", len(commands)) {
		return b
	}
	for _, c := range commands {
		_, err := b.registry.Register(registry.KindCommand, c, b.source)
		b.record(err)
	}
	return b
}

// HostBundles adds bundles owned by the host runtime. They are only
// processed when ConfigureFromHostBundles is enabled.
func (b *Builder) HostBundles(bundles ...bundle.Bundle) *Builder {
	if !b.requireAny("host bundles", len(bundles)) {
		return b
	}
	b.hostBundles = append(b.hostBundles, bundles...)
	return b
}

// Disable adds disable predicates. They also apply to items registered
// earlier.
func (b *Builder) Disable(predicates ...registry.Predicate) *Builder {
	if !b.requireAny("disable", len(predicates)) {
		return b
	}
	for _, p := range predicates {
		b.record(b.registry.Disable(p, b.source))
	}
	return b
}

func (b *Builder) DisableInstallers(types ...any) *Builder {
	b.record(b.registry.DisableTypes(registry.KindInstaller, b.source, types...))
	return b
}

func (b *Builder) DisableExtensions(types ...any) *Builder {
	b.record(b.registry.DisableTypes(registry.KindExtension, b.source, types...))
	return b
}

func (b *Builder) DisableModules(types ...any) *Builder {
	b.record(b.registry.DisableTypes(registry.KindModule, b.source, types...))
	return b
}

func (b *Builder) DisableBundles(types ...any) *Builder {
	b.record(b.registry.DisableTypes(registry.KindBundle, b.source, types...))
	return b
}

func (b *Builder) DisableCommands(types ...any) *Builder {
	b.record(b.registry.DisableTypes(registry.KindCommand, b.source, types...))
	return b
}

// Option sets one option value.
func (b *Builder) Option(key option.Key, value any) *Builder {
	b.record(b.options.Set(key, value))
	return b
}

// Options sets option values from their string form, keyed by option id.
func (b *Builder) Options(values map[string]string) *Builder {
	b.record(b.options.MapStrings(values))
	return b
}

// OptionsFromEnv reads every declared option from prefixed environment
// variables, e.g. RIG_OPT_RIG_SCANPACKAGES for prefix "RIG_OPT_".
func (b *Builder) OptionsFromEnv(prefix string) *Builder {
	keys, err := b.options.MapEnv(prefix)
	b.record(err)
	for _, k := range keys {
		logging.Debug("Bootstrap", "Option %s set from environment", k.ID())
	}
	return b
}

// EnableAutoConfig turns on package scanning for installers, extensions
// and, with SearchCommands, commands.
func (b *Builder) EnableAutoConfig(packages ...string) *Builder {
	if !b.requireAny("enable auto config", len(packages)) {
		return b
	}
	return b.Option(option.ScanPackages, packages)
}

// SearchCommands enables command discovery in the scanned packages.
func (b *Builder) SearchCommands() *Builder {
	return b.Option(option.SearchCommands, true)
}

// NoDefaultInstallers skips registering the core installers.
func (b *Builder) NoDefaultInstallers() *Builder {
	return b.Option(option.UseCoreInstallers, false)
}

func (b *Builder) ConfigureFromHostBundles() *Builder {
	return b.Option(option.ConfigureFromHostBundles, true)
}

// BundleLookup replaces the default bundle lookup.
func (b *Builder) BundleLookup(l bundle.Lookup) *Builder {
	if l == nil {
		b.record(errs.Precondition("bundle lookup", "lookup is nil"))
		return b
	}
	b.lookup = l
	return b
}

func (b *Builder) DisableBundleLookup() *Builder {
	return b.Option(option.UseBundleLookup, false)
}

// ContainerFactory replaces the default container factory.
func (b *Builder) ContainerFactory(f container.Factory) *Builder {
	if f == nil {
		b.record(errs.Precondition("container factory", "factory is nil"))
		return b
	}
	b.factory = f
	return b
}

// Scanner replaces the default catalog scanner.
func (b *Builder) Scanner(s scan.Scanner) *Builder {
	if s == nil {
		b.record(errs.Precondition("scanner", "scanner is nil"))
		return b
	}
	b.scanner = s
	return b
}

// Tracing records bootstrap phases as spans of p.
func (b *Builder) Tracing(p *tracing.Provider) *Builder {
	b.tracer = p
	return b
}

// Listen adds lifecycle listeners. Listeners that implement Hook are also
// applied as hooks at Build.
func (b *Builder) Listen(listeners ...lifecycle.Listener) *Builder {
	if !b.requireAny("listen", len(listeners)) {
		return b
	}
	b.events.Listen(listeners...)
	return b
}

// PrintDiagnosticInfo writes the startup report to out once the
// application is running.
func (b *Builder) PrintDiagnosticInfo(out io.Writer, opts report.Options) *Builder {
	b.diagOut = out
	b.diagnostics = &opts
	return b
}

// PrintLifecyclePhases writes a banner per phase to out.
func (b *Builder) PrintLifecyclePhases(out io.Writer, detailed bool) *Builder {
	return b.Listen(lifecycle.NewDebugListener(out, detailed))
}

// ApplyConfig transfers the startup settings of cfg to the builder. Reports
// are written to out.
func (b *Builder) ApplyConfig(cfg config.Config, out io.Writer) *Builder {
	if len(cfg.Packages) > 0 {
		b.EnableAutoConfig(cfg.Packages...)
	}
	b.Option(option.SearchCommands, cfg.SearchCommands)
	b.Option(option.UseCoreInstallers, cfg.UseCoreInstallers)
	b.Option(option.ConfigureFromHostBundles, cfg.ConfigureFromHostBundles)
	b.Option(option.UseBundleLookup, cfg.BundleLookup)

	stage, err := container.ParseStage(cfg.Stage)
	if err != nil {
		b.record(errs.Precondition("apply config", "%v", err))
	} else {
		b.Option(option.ContainerStage, stage)
	}
	if len(cfg.Options) > 0 {
		b.Options(cfg.Options)
	}

	if cfg.Report.LifecyclePhases {
		b.PrintLifecyclePhases(out, cfg.Report.Detailed)
	}
	if cfg.Report.Diagnostics {
		format, err := report.ParseFormat(cfg.Report.Format)
		b.record(err)
		b.PrintDiagnosticInfo(out, report.Options{Format: format, Color: cfg.Report.Color})
	}
	if cfg.SystemdNotify {
		b.Listen(lifecycle.NewSystemdNotifier())
	}
	return b
}

// Stats returns the statistics collected by this builder's bootstrap.
func (b *Builder) Stats() *stat.Stats {
	return b.stats
}

// Err returns the errors recorded so far.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// Build applies configuration hooks, announces Configured and returns the
// bootstrap. A stage, when given, overrides the ContainerStage option.
func (b *Builder) Build(stage ...container.Stage) (*Bootstrap, error) {
	if b.built {
		return nil, errs.State("build", "builder already built")
	}
	b.built = true

	switch len(stage) {
	case 0:
	case 1:
		b.Option(option.ContainerStage, stage[0])
	default:
		b.record(errs.Precondition("build", "at most one stage may be given, got %d", len(stage)))
	}

	applied := b.applyHooks()
	if err := b.Err(); err != nil {
		logging.Error("Bootstrap", err, "Application configuration failed")
		return nil, err
	}

	boot := newBootstrap(b)
	err := boot.fire(lifecycle.ConfiguredEvent{
		Header:    boot.header(),
		Hooks:     applied,
		Listeners: len(b.events.Listeners()),
	})
	if err != nil {
		return nil, err
	}
	return boot, nil
}

func (b *Builder) applyHooks() []string {
	var applied []string
	apply := func(h Hook) {
		previous := b.source
		b.source = registry.Hook
		h.Configure(b)
		b.source = previous
		applied = append(applied, hookName(h))
		logging.Debug("Bootstrap", "Applied configuration hook %s", hookName(h))
	}

	for _, h := range registeredHooks() {
		apply(h)
	}
	// Hooks may add listeners that are hooks themselves.
	for i := 0; ; i++ {
		listeners := b.events.Listeners()
		if i >= len(listeners) {
			break
		}
		if h, ok := listeners[i].(Hook); ok {
			apply(h)
		}
	}
	return applied
}
