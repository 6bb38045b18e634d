package module

import (
	"errors"
	"fmt"
	"reflect"

	"rig/pkg/logging"
)

// Key identifies a binding.
type Key struct {
	Type reflect.Type
	Name string
}

// KeyOf returns the key for type T with an optional name.
func KeyOf[T any](name ...string) Key {
	k := Key{Type: reflect.TypeFor[T]()}
	if len(name) > 0 {
		k.Name = name[0]
	}
	return k
}

func (k Key) String() string {
	if k.Name == "" {
		return fmt.Sprint(k.Type)
	}
	return fmt.Sprintf("%s[%s]", k.Type, k.Name)
}

// Injector resolves keys to instances.
type Injector interface {
	GetInstance(key Key) (any, error)
}

// Provider builds an instance on demand.
type Provider func(in Injector) (any, error)

// Binding is a single key binding. Exactly one of Instance and Provider is
// set.
type Binding struct {
	Key      Key
	Instance any
	Provider Provider
	Module   string
}

// Module configures bindings.
type Module interface {
	Configure(b *Binder) error
}

// Func adapts a function to Module.
type Func func(b *Binder) error

func (f Func) Configure(b *Binder) error { return f(b) }

// Binder collects bindings from modules.
type Binder struct {
	bindings   []Binding
	index      map[Key]int
	installed  map[any]bool
	errs       []error
	current    string
	permitDups bool
}

// NewBinder returns an empty binder that rejects duplicate keys.
func NewBinder() *Binder {
	return &Binder{
		index:     make(map[Key]int),
		installed: make(map[any]bool),
	}
}

// PermitDuplicates makes later bindings of an already bound key no-ops.
func (b *Binder) PermitDuplicates() *Binder {
	b.permitDups = true
	return b
}

// Bind binds key to value. The value must be assignable to the key type.
func (b *Binder) Bind(key Key, value any) {
	if key.Type == nil {
		b.errorf("bind: key without type")
		return
	}
	if value == nil || !reflect.TypeOf(value).AssignableTo(key.Type) {
		b.errorf("bind %s: value of type %T is not assignable", key, value)
		return
	}
	b.add(Binding{Key: key, Instance: value, Module: b.current})
}

// BindProvider binds key to a provider called at most once per container.
func (b *Binder) BindProvider(key Key, p Provider) {
	if key.Type == nil || p == nil {
		b.errorf("bind %s: key type and provider are required", key)
		return
	}
	b.add(Binding{Key: key, Provider: p, Module: b.current})
}

// Install configures modules into this binder. A module instance that is
// comparable is installed only once.
func (b *Binder) Install(modules ...Module) {
	for _, m := range modules {
		if m == nil {
			b.errorf("install: nil module")
			continue
		}
		if reflect.TypeOf(m).Comparable() {
			if b.installed[m] {
				continue
			}
			b.installed[m] = true
		}

		previous := b.current
		b.current = fmt.Sprintf("%T", m)
		if err := m.Configure(b); err != nil {
			b.errs = append(b.errs, fmt.Errorf("module %s: %w", b.current, err))
		}
		b.current = previous
	}
}

func (b *Binder) add(binding Binding) {
	if i, exists := b.index[binding.Key]; exists {
		first := b.bindings[i]
		if b.permitDups {
			logging.Debug("Bootstrap", "Binding %s from %s ignored, already bound by %s", binding.Key, binding.Module, first.Module)
			return
		}
		b.errorf("%s already bound by %s (again in %s)", binding.Key, first.Module, binding.Module)
		return
	}
	b.index[binding.Key] = len(b.bindings)
	b.bindings = append(b.bindings, binding)
}

func (b *Binder) errorf(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

// Bindings returns the collected bindings in binding order.
func (b *Binder) Bindings() []Binding {
	return append([]Binding(nil), b.bindings...)
}

// Err returns all accumulated errors joined, or nil.
func (b *Binder) Err() error {
	return errors.Join(b.errs...)
}

// Elements configures modules into a fresh binder and returns its bindings.
func Elements(modules ...Module) ([]Binding, error) {
	return elements(NewBinder(), modules)
}

// elements configures modules into a fresh binder with the duplicate policy
// of b.
func (b *Binder) elements(modules []Module) ([]Binding, error) {
	child := NewBinder()
	child.permitDups = b.permitDups
	return elements(child, modules)
}

func elements(b *Binder, modules []Module) ([]Binding, error) {
	b.Install(modules...)
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b.Bindings(), nil
}
