package bundle

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// EnvVar names the variable read by EnvLookup by default.
const EnvVar = "RIG_BUNDLES"

// Lookup finds bundles outside the application code.
type Lookup interface {
	Lookup() ([]Bundle, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func() ([]Bundle, error)

func (f LookupFunc) Lookup() ([]Bundle, error) { return f() }

// VoidLookup finds nothing.
type VoidLookup struct{}

func (VoidLookup) Lookup() ([]Bundle, error) { return nil, nil }

// Factory creates a bundle instance.
type Factory func() Bundle

type namedEntry struct {
	name    string
	factory Factory
	auto    bool
}

// Catalog maps names to bundle factories.
type Catalog struct {
	mu      sync.RWMutex
	entries []namedEntry
	byName  map[string]int
}

func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]int)}
}

// Register adds a named factory. Automatic entries are picked up by
// CatalogLookup. Registering a taken name panics.
func (c *Catalog) Register(name string, factory Factory, auto bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[name]; exists {
		panic(fmt.Sprintf("bundle %q registered twice", name))
	}
	c.byName[name] = len(c.entries)
	c.entries = append(c.entries, namedEntry{name: name, factory: factory, auto: auto})
}

// New instantiates the bundle registered under name.
func (c *Catalog) New(name string) (Bundle, error) {
	c.mu.RLock()
	i, ok := c.byName[name]
	var f Factory
	if ok {
		f = c.entries[i].factory
	}
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown bundle %q (known: %s)", name, strings.Join(c.Names(), ", "))
	}
	return f(), nil
}

// Names lists registered names sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) automatic() []Bundle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Bundle
	for _, e := range c.entries {
		if e.auto {
			out = append(out, e.factory())
		}
	}
	return out
}

var defaultCatalog = NewCatalog()

// RegisterNamed adds a factory to the process-wide catalog.
func RegisterNamed(name string, factory Factory, auto bool) {
	defaultCatalog.Register(name, factory, auto)
}

// DefaultCatalog returns the process-wide catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// EnvLookup instantiates the catalog bundles named in a comma separated
// environment variable.
type EnvLookup struct {
	Var     string
	Catalog *Catalog
}

func (l EnvLookup) Lookup() ([]Bundle, error) {
	name := l.Var
	if name == "" {
		name = EnvVar
	}
	catalog := l.Catalog
	if catalog == nil {
		catalog = defaultCatalog
	}

	var out []Bundle
	for _, n := range strings.Split(os.Getenv(name), ",") {
		if n = strings.TrimSpace(n); n == "" {
			continue
		}
		b, err := catalog.New(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// CatalogLookup returns every automatic catalog bundle in registration
// order.
type CatalogLookup struct {
	Catalog *Catalog
}

func (l CatalogLookup) Lookup() ([]Bundle, error) {
	catalog := l.Catalog
	if catalog == nil {
		catalog = defaultCatalog
	}
	return catalog.automatic(), nil
}

// CompositeLookup concatenates lookups, keeping the first bundle of each
// type.
type CompositeLookup []Lookup

func (c CompositeLookup) Lookup() ([]Bundle, error) {
	seen := make(map[reflect.Type]bool)
	var out []Bundle
	for _, l := range c {
		found, err := l.Lookup()
		if err != nil {
			return nil, err
		}
		for _, b := range found {
			t := reflect.TypeOf(b)
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, b)
		}
	}
	return out, nil
}

// DefaultLookup reads RIG_BUNDLES and then the automatic catalog entries.
func DefaultLookup() Lookup {
	return CompositeLookup{EnvLookup{}, CatalogLookup{}}
}
