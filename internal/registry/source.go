package registry

import (
	"fmt"
	"reflect"
)

// Scope is the origin category of a registration.
type Scope int

const (
	ScopeApplication Scope = iota
	ScopeBundle
	ScopeLookup
	ScopeHostBundle
	ScopeClasspathScan
	ScopeHook
)

func (s Scope) String() string {
	switch s {
	case ScopeApplication:
		return "application"
	case ScopeBundle:
		return "bundle"
	case ScopeLookup:
		return "lookup"
	case ScopeHostBundle:
		return "host"
	case ScopeClasspathScan:
		return "scan"
	case ScopeHook:
		return "hook"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Source records who registered (or disabled) an item. Bundle is set only
// for ScopeBundle.
type Source struct {
	Scope  Scope
	Bundle reflect.Type
}

var (
	Application   = Source{Scope: ScopeApplication}
	Lookup        = Source{Scope: ScopeLookup}
	HostBundle    = Source{Scope: ScopeHostBundle}
	ClasspathScan = Source{Scope: ScopeClasspathScan}
	Hook          = Source{Scope: ScopeHook}
)

// FromBundle returns the source for registrations made by bundle b.
func FromBundle(b any) Source {
	return Source{Scope: ScopeBundle, Bundle: TypeOf(b)}
}

func (s Source) String() string {
	if s.Scope == ScopeBundle && s.Bundle != nil {
		return fmt.Sprintf("bundle(%s)", s.Bundle)
	}
	return s.Scope.String()
}

// TypeOf returns the identity type of v. A reflect.Type is returned as is so
// callers can refer to items by type without an instance.
func TypeOf(v any) reflect.Type {
	if t, ok := v.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(v)
}
