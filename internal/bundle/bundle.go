package bundle

import (
	"errors"
	"fmt"
	"reflect"

	"rig/internal/command"
	"rig/internal/installer"
	"rig/internal/lifecycle"
	"rig/internal/module"
	"rig/internal/option"
	"rig/internal/registry"
	"rig/pkg/logging"
)

// Bundle groups related registrations.
type Bundle interface {
	Initialize(b *Bootstrap) error
}

// Func adapts a function to Bundle. Function values have no usable type
// identity, so every Func shares one registry entry; prefer named types.
type Func func(b *Bootstrap) error

func (f Func) Initialize(b *Bootstrap) error { return f(b) }

// Bootstrap is the registration view handed to a bundle. Calls record their
// errors; the processor reports them once Initialize returns.
type Bootstrap struct {
	p      *Processor
	source registry.Source
	errs   []error
}

func (b *Bootstrap) record(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

func (b *Bootstrap) register(kind registry.Kind, values []any) {
	for _, v := range values {
		_, err := b.p.registry.Register(kind, v, b.source)
		b.record(err)
	}
}

// Modules registers normal modules.
func (b *Bootstrap) Modules(modules ...module.Module) *Bootstrap {
	for _, m := range modules {
		_, err := b.p.registry.Register(registry.KindModule, m, b.source)
		b.record(err)
	}
	return b
}

// ModulesOverride registers overriding modules.
func (b *Bootstrap) ModulesOverride(modules ...module.Module) *Bootstrap {
	for _, m := range modules {
		_, err := b.p.registry.RegisterOverride(m, b.source)
		b.record(err)
	}
	return b
}

func (b *Bootstrap) Installers(installers ...installer.Installer) *Bootstrap {
	for _, in := range installers {
		_, err := b.p.registry.Register(registry.KindInstaller, in, b.source)
		b.record(err)
	}
	return b
}

// Extensions registers extensions. Each must be recognized by an enabled
// installer or the run fails.
func (b *Bootstrap) Extensions(extensions ...any) *Bootstrap {
	b.register(registry.KindExtension, extensions)
	return b
}

func (b *Bootstrap) Commands(commands ...command.Command) *Bootstrap {
	for _, c := range commands {
		_, err := b.p.registry.Register(registry.KindCommand, c, b.source)
		b.record(err)
	}
	return b
}

// Bundles registers nested bundles; new types are queued for processing.
func (b *Bootstrap) Bundles(bundles ...Bundle) *Bootstrap {
	for _, nested := range bundles {
		b.record(b.p.Add(nested, b.source))
	}
	return b
}

// Disable adds disable predicates.
func (b *Bootstrap) Disable(predicates ...registry.Predicate) *Bootstrap {
	for _, p := range predicates {
		b.record(b.p.registry.Disable(p, b.source))
	}
	return b
}

func (b *Bootstrap) DisableInstallers(types ...any) *Bootstrap {
	b.record(b.p.registry.DisableTypes(registry.KindInstaller, b.source, types...))
	return b
}

func (b *Bootstrap) DisableExtensions(types ...any) *Bootstrap {
	b.record(b.p.registry.DisableTypes(registry.KindExtension, b.source, types...))
	return b
}

func (b *Bootstrap) DisableModules(types ...any) *Bootstrap {
	b.record(b.p.registry.DisableTypes(registry.KindModule, b.source, types...))
	return b
}

func (b *Bootstrap) DisableBundles(types ...any) *Bootstrap {
	b.record(b.p.registry.DisableTypes(registry.KindBundle, b.source, types...))
	return b
}

// Option reads an option value.
func (b *Bootstrap) Option(key option.Key) any {
	return b.p.options.Get(key)
}

// Options returns the option reader.
func (b *Bootstrap) Options() option.Reader {
	return b.p.options
}

// Listen adds lifecycle listeners.
func (b *Bootstrap) Listen(listeners ...lifecycle.Listener) *Bootstrap {
	if b.p.events != nil {
		b.p.events.Listen(listeners...)
	}
	return b
}

// Source returns the source attributed to registrations made here.
func (b *Bootstrap) Source() registry.Source {
	return b.source
}

// Err returns the accumulated registration errors.
func (b *Bootstrap) Err() error {
	return errors.Join(b.errs...)
}

// Processor expands bundles to a fixed point.
type Processor struct {
	registry *registry.Registry
	options  option.Reader
	events   *lifecycle.Broadcaster

	queue     []*registry.Info
	queued    map[reflect.Type]bool
	processed []reflect.Type
}

// NewProcessor creates a processor registering into reg. events may be nil.
func NewProcessor(reg *registry.Registry, options option.Reader, events *lifecycle.Broadcaster) *Processor {
	return &Processor{
		registry: reg,
		options:  options,
		events:   events,
		queued:   make(map[reflect.Type]bool),
	}
}

// Add registers b and queues it when its type is new.
func (p *Processor) Add(b Bundle, source registry.Source) error {
	info, err := p.registry.Register(registry.KindBundle, b, source)
	if err != nil {
		return err
	}
	if p.queued[info.Type] {
		return nil
	}
	p.queued[info.Type] = true
	p.queue = append(p.queue, info)
	return nil
}

// Scoped returns a Bootstrap that attributes registrations to source. It
// is used for registrations made outside bundles, such as hooks.
func (p *Processor) Scoped(source registry.Source) *Bootstrap {
	return &Bootstrap{p: p, source: source}
}

// Process initializes queued bundles until the worklist is empty.
func (p *Processor) Process() error {
	for len(p.queue) > 0 {
		info := p.queue[0]
		p.queue = p.queue[1:]

		if info.Disabled {
			logging.Debug("Bundles", "Skipping disabled bundle %s", info.Type)
			continue
		}

		b := info.Instance.(Bundle)
		bs := &Bootstrap{p: p, source: registry.FromBundle(b)}
		p.processed = append(p.processed, info.Type)
		logging.Debug("Bundles", "Initializing bundle %s", info.Type)

		if err := errors.Join(b.Initialize(bs), bs.Err()); err != nil {
			return fmt.Errorf("bundle %s: %w", info.Type, err)
		}
	}
	return nil
}

// Processed returns the bundle types initialized so far, in order.
func (p *Processor) Processed() []reflect.Type {
	return append([]reflect.Type(nil), p.processed...)
}
