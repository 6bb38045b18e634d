package registry

import (
	"fmt"
	"reflect"
	"sync"

	"rig/internal/errs"
	"rig/pkg/logging"
)

// Kind is the category of a registered item.
type Kind int

const (
	KindModule Kind = iota
	KindInstaller
	KindExtension
	KindBundle
	KindCommand
)

// Kinds lists every kind in reporting order.
var Kinds = []Kind{KindBundle, KindModule, KindInstaller, KindExtension, KindCommand}

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindInstaller:
		return "installer"
	case KindExtension:
		return "extension"
	case KindBundle:
		return "bundle"
	case KindCommand:
		return "command"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Info describes one registered item. Values returned by the Registry are
// owned by it; callers must treat them as read-only.
type Info struct {
	Kind         Kind
	Type         reflect.Type
	Instance     any
	RegisteredBy Source
	Sources      []Source
	Disabled     bool
	DisabledBy   []Source
	Overriding   bool
	Ignored      bool
	Order        int
}

// Enabled reports whether the item takes part in the run.
func (i *Info) Enabled() bool {
	return !i.Disabled && !i.Ignored
}

func (i *Info) String() string {
	return fmt.Sprintf("%s %s", i.Kind, i.Type)
}

// Predicate selects items to disable.
type Predicate func(*Info) bool

type rule struct {
	predicate Predicate
	source    Source
}

type itemKey struct {
	kind       Kind
	overriding bool
	typ        reflect.Type
}

// Registry is safe for concurrent use, though the bootstrap drives it from a
// single goroutine.
type Registry struct {
	mu     sync.RWMutex
	items  map[itemKey]*Info
	order  []*Info
	rules  []rule
	frozen bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{items: make(map[itemKey]*Info)}
}

// Register adds instance as an item of kind, or returns the existing item of
// the same type.
func (r *Registry) Register(kind Kind, instance any, source Source) (*Info, error) {
	return r.register(kind, false, instance, source)
}

// RegisterOverride adds instance as an overriding module.
func (r *Registry) RegisterOverride(instance any, source Source) (*Info, error) {
	return r.register(KindModule, true, instance, source)
}

func (r *Registry) register(kind Kind, overriding bool, instance any, source Source) (*Info, error) {
	if instance == nil {
		return nil, errs.Precondition("register "+kind.String(), "nil %s registered by %s", kind, source)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return nil, errs.State("register "+kind.String(), "registry is frozen")
	}

	key := itemKey{kind: kind, overriding: overriding, typ: TypeOf(instance)}
	if existing, ok := r.items[key]; ok {
		existing.Sources = append(existing.Sources, source)
		logging.Debug("Registry", "Duplicate %s ignored (registered by %s, first by %s)", existing, source, existing.RegisteredBy)
		return existing, nil
	}

	info := &Info{
		Kind:         kind,
		Type:         key.typ,
		Instance:     instance,
		RegisteredBy: source,
		Sources:      []Source{source},
		Overriding:   overriding,
		Order:        len(r.order),
	}
	r.items[key] = info
	r.order = append(r.order, info)

	for _, rl := range r.rules {
		r.apply(rl, info)
	}
	if kind == KindModule {
		r.markIgnored(key.typ)
	}
	if info.Overriding {
		logging.Debug("Registry", "Registered overriding %s by %s", info, source)
	} else {
		logging.Debug("Registry", "Registered %s by %s", info, source)
	}
	return info, nil
}

// markIgnored flags an override module whose type is also a normal module.
// The normal registration shadows the override even when it is disabled.
func (r *Registry) markIgnored(typ reflect.Type) {
	override, ok := r.items[itemKey{kind: KindModule, overriding: true, typ: typ}]
	if !ok || override.Ignored {
		return
	}
	if _, normal := r.items[itemKey{kind: KindModule, typ: typ}]; normal {
		override.Ignored = true
		logging.Debug("Registry", "Overriding module %s ignored: registered as a normal module", typ)
	}
}

func (r *Registry) apply(rl rule, info *Info) {
	if !rl.predicate(info) {
		return
	}
	if !info.Disabled {
		logging.Debug("Registry", "Disabled %s (by %s)", info, rl.source)
	}
	info.Disabled = true
	info.DisabledBy = append(info.DisabledBy, rl.source)
}

// Disable stores predicate and applies it to every item registered so far.
func (r *Registry) Disable(predicate Predicate, source Source) error {
	if predicate == nil {
		return errs.Precondition("disable", "nil predicate from %s", source)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return errs.State("disable", "registry is frozen")
	}

	rl := rule{predicate: predicate, source: source}
	r.rules = append(r.rules, rl)
	for _, info := range r.order {
		r.apply(rl, info)
	}
	return nil
}

// DisableTypes disables items of kind whose type matches one of values.
// Values may be instances or reflect.Type values.
func (r *Registry) DisableTypes(kind Kind, source Source, values ...any) error {
	if len(values) == 0 {
		return errs.Precondition("disable "+kind.String(), "no types given by %s", source)
	}
	types := make(map[reflect.Type]bool, len(values))
	for _, v := range values {
		if v == nil {
			return errs.Precondition("disable "+kind.String(), "nil type given by %s", source)
		}
		types[TypeOf(v)] = true
	}
	return r.Disable(func(i *Info) bool {
		return i.Kind == kind && types[i.Type]
	}, source)
}

// Resolve returns the enabled, non-overriding items of kind in registration
// order.
func (r *Registry) Resolve(kind Kind) []*Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Info
	for _, info := range r.order {
		if info.Kind == kind && !info.Overriding && info.Enabled() {
			out = append(out, info)
		}
	}
	return out
}

// ResolveOverrides returns the enabled overriding modules that are not
// shadowed by a normal module of the same type.
func (r *Registry) ResolveOverrides() []*Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Info
	for _, info := range r.order {
		if info.Overriding && info.Enabled() {
			out = append(out, info)
		}
	}
	return out
}

// All returns every item of kind, enabled or not, in registration order.
func (r *Registry) All(kind Kind) []*Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Info
	for _, info := range r.order {
		if info.Kind == kind {
			out = append(out, info)
		}
	}
	return out
}

// Get returns the normal item of kind with type typ.
func (r *Registry) Get(kind Kind, typ reflect.Type) (*Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.items[itemKey{kind: kind, typ: typ}]
	return info, ok
}

// GetOverride returns the overriding module with type typ.
func (r *Registry) GetOverride(typ reflect.Type) (*Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.items[itemKey{kind: KindModule, overriding: true, typ: typ}]
	return info, ok
}

// Items returns every item in registration order.
func (r *Registry) Items() []*Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Info(nil), r.order...)
}

// DisableSources lists the sources of all stored predicates in the order
// they were added.
func (r *Registry) DisableSources() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Source, len(r.rules))
	for i, rl := range r.rules {
		out[i] = rl.source
	}
	return out
}

// Freeze rejects all further mutation.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Instances extracts the instances of infos.
func Instances(infos []*Info) []any {
	out := make([]any, len(infos))
	for i, info := range infos {
		out[i] = info.Instance
	}
	return out
}
