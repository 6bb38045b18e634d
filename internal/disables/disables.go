// Package disables provides ready-made disable predicates and combinators
// for registry.Registry.Disable.
//
//	b.Disable(disables.And(disables.Installers(), disables.InBundle(&metrics.Bundle{})))
package disables

import (
	"reflect"

	"rig/internal/registry"
)

// Kinds matches items of any of the given kinds.
func Kinds(kinds ...registry.Kind) registry.Predicate {
	return func(i *registry.Info) bool {
		for _, k := range kinds {
			if i.Kind == k {
				return true
			}
		}
		return false
	}
}

func Installers() registry.Predicate { return Kinds(registry.KindInstaller) }
func Extensions() registry.Predicate { return Kinds(registry.KindExtension) }
func Modules() registry.Predicate    { return Kinds(registry.KindModule) }
func Bundles() registry.Predicate    { return Kinds(registry.KindBundle) }
func Commands() registry.Predicate   { return Kinds(registry.KindCommand) }

// Type matches items whose type equals the type of one of values. Values may
// be instances or reflect.Type values.
func Type(values ...any) registry.Predicate {
	types := make(map[reflect.Type]bool, len(values))
	for _, v := range values {
		types[registry.TypeOf(v)] = true
	}
	return func(i *registry.Info) bool {
		return types[i.Type]
	}
}

// RegisteredBy matches items first registered by source.
func RegisteredBy(source registry.Source) registry.Predicate {
	return func(i *registry.Info) bool {
		return i.RegisteredBy == source
	}
}

// InApplication matches items registered directly on the builder.
func InApplication() registry.Predicate {
	return RegisteredBy(registry.Application)
}

// InBundle matches items first registered by bundle b.
func InBundle(b any) registry.Predicate {
	return RegisteredBy(registry.FromBundle(b))
}

// And matches when every predicate matches. An empty And matches everything.
func And(predicates ...registry.Predicate) registry.Predicate {
	return func(i *registry.Info) bool {
		for _, p := range predicates {
			if !p(i) {
				return false
			}
		}
		return true
	}
}

// Or matches when any predicate matches.
func Or(predicates ...registry.Predicate) registry.Predicate {
	return func(i *registry.Info) bool {
		for _, p := range predicates {
			if p(i) {
				return true
			}
		}
		return false
	}
}

func Not(p registry.Predicate) registry.Predicate {
	return func(i *registry.Info) bool { return !p(i) }
}
