package option

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"rig/internal/container"
)

// Type is the value type tag of an option key.
type Type int

const (
	Bool Type = iota
	Int
	String
	Strings
	Duration
	Stage
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case String:
		return "string"
	case Strings:
		return "strings"
	case Duration:
		return "duration"
	case Stage:
		return "stage"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// accepts reports whether v is a valid value for the type.
func (t Type) accepts(v any) bool {
	switch t {
	case Bool:
		_, ok := v.(bool)
		return ok
	case Int:
		_, ok := v.(int)
		return ok
	case String:
		_, ok := v.(string)
		return ok
	case Strings:
		_, ok := v.([]string)
		return ok
	case Duration:
		_, ok := v.(time.Duration)
		return ok
	case Stage:
		_, ok := v.(container.Stage)
		return ok
	default:
		return false
	}
}

// Key identifies one declared option.
type Key struct {
	Group   string
	Name    string
	Type    Type
	Default any
}

// ID returns the "group.name" identifier of the key.
func (k Key) ID() string {
	return k.Group + "." + k.Name
}

func (k Key) String() string {
	return k.ID()
}

var (
	declaredMu sync.RWMutex
	declared   = make(map[string]Key)
)

// Declare adds a key to the process-wide option table. It panics when the
// default does not match the type or when the identifier is already taken;
// both are programming errors caught at init time.
func Declare(group, name string, typ Type, def any) Key {
	k := Key{Group: group, Name: name, Type: typ, Default: def}
	if !typ.accepts(def) {
		panic(fmt.Sprintf("option %s: default %v (%T) is not a %s", k.ID(), def, def, typ))
	}

	declaredMu.Lock()
	defer declaredMu.Unlock()
	if _, exists := declared[k.ID()]; exists {
		panic(fmt.Sprintf("option %s declared twice", k.ID()))
	}
	declared[k.ID()] = k
	return k
}

// Lookup finds a declared key by its "group.name" identifier.
func Lookup(id string) (Key, bool) {
	declaredMu.RLock()
	defer declaredMu.RUnlock()
	k, ok := declared[id]
	return k, ok
}

// Declared returns every declared key sorted by identifier.
func Declared() []Key {
	declaredMu.RLock()
	keys := make([]Key, 0, len(declared))
	for _, k := range declared {
		keys = append(keys, k)
	}
	declaredMu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].ID() < keys[j].ID() })
	return keys
}

func isDeclared(k Key) bool {
	declaredMu.RLock()
	defer declaredMu.RUnlock()
	d, ok := declared[k.ID()]
	return ok && d.Type == k.Type
}

// Core options.
var (
	ScanPackages             = Declare("rig", "ScanPackages", Strings, []string{})
	SearchCommands           = Declare("rig", "SearchCommands", Bool, false)
	UseCoreInstallers        = Declare("rig", "UseCoreInstallers", Bool, true)
	ConfigureFromHostBundles = Declare("rig", "ConfigureFromHostBundles", Bool, false)
	UseBundleLookup          = Declare("rig", "UseBundleLookup", Bool, true)
	ContainerStage           = Declare("rig", "ContainerStage", Stage, container.Production)
	DenyDuplicateBindings    = Declare("rig", "DenyDuplicateBindings", Bool, true)
)
