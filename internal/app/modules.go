package app

import (
	"reflect"

	"rig/internal/environment"
	"rig/internal/module"
	"rig/internal/option"
	"rig/internal/registry"
	"rig/internal/stat"
)

// EnvironmentAware modules receive the environment before the container is
// created.
type EnvironmentAware interface {
	SetEnvironment(env *environment.Environment)
}

// ConfigurationAware modules receive the configuration passed to Run.
type ConfigurationAware interface {
	SetConfiguration(cfg any)
}

// OptionsAware modules receive the option reader.
type OptionsAware interface {
	SetOptions(options option.Reader)
}

func injectAware(modules []module.Module, env *environment.Environment, cfg any, options option.Reader) {
	for _, m := range modules {
		if a, ok := m.(EnvironmentAware); ok {
			a.SetEnvironment(env)
		}
		if a, ok := m.(ConfigurationAware); ok {
			a.SetConfiguration(cfg)
		}
		if a, ok := m.(OptionsAware); ok {
			a.SetOptions(options)
		}
	}
}

// Items is a read-only view of the application's registrations. It is
// bound in every container.
type Items struct {
	reg *registry.Registry
}

// Enabled returns the types of the enabled items of kind, in registration
// order.
func (v Items) Enabled(kind registry.Kind) []reflect.Type {
	return types(v.reg.Resolve(kind))
}

// Disabled returns the types of the disabled items of kind.
func (v Items) Disabled(kind registry.Kind) []reflect.Type {
	var out []reflect.Type
	for _, info := range v.reg.All(kind) {
		if info.Disabled {
			out = append(out, info.Type)
		}
	}
	return out
}

// Info returns a copy of the registration of typ.
func (v Items) Info(kind registry.Kind, typ reflect.Type) (registry.Info, bool) {
	info, ok := v.reg.Get(kind, typ)
	if !ok {
		return registry.Info{}, false
	}
	return *info, true
}

func types(infos []*registry.Info) []reflect.Type {
	out := make([]reflect.Type, len(infos))
	for i, info := range infos {
		out[i] = info.Type
	}
	return out
}

// bootstrapModule binds the objects the bootstrap itself owns.
type bootstrapModule struct {
	env           *environment.Environment
	configuration any
	options       option.Reader
	stats         *stat.Stats
	items         Items
}

func (m *bootstrapModule) Configure(b *module.Binder) error {
	b.Bind(module.KeyOf[*environment.Environment](), m.env)
	b.Bind(module.KeyOf[option.Reader](), m.options)
	b.Bind(module.KeyOf[*stat.Stats](), m.stats)
	b.Bind(module.KeyOf[Items](), m.items)
	if m.configuration != nil {
		b.Bind(module.Key{Type: reflect.TypeOf(m.configuration)}, m.configuration)
	}
	return nil
}
