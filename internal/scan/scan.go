package scan

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"rig/internal/errs"
	"rig/pkg/logging"
)

// Scanner discovers values in packages.
type Scanner interface {
	Scan(ctx context.Context, packages []string) ([]any, error)
	Cleanup()
}

// Invisible values are registered in the catalog but never returned by a
// scan.
type Invisible interface {
	ScanInvisible()
}

// Hidden can be embedded to make a value Invisible.
type Hidden struct{}

func (Hidden) ScanInvisible() {}

type entry struct {
	pkg   string
	value any
	seq   int
}

// Catalog maps package paths to discoverable values.
type Catalog struct {
	mu      sync.RWMutex
	entries []entry
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

// Add registers values under pkg.
func (c *Catalog) Add(pkg string, values ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range values {
		c.entries = append(c.entries, entry{pkg: pkg, value: v, seq: len(c.entries)})
	}
}

// Packages lists the catalog's package paths sorted.
func (c *Catalog) Packages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, e := range c.entries {
		if !seen[e.pkg] {
			seen[e.pkg] = true
			out = append(out, e.pkg)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) collect(ctx context.Context, prefix string) ([]entry, error) {
	c.mu.RLock()
	snapshot := append([]entry(nil), c.entries...)
	c.mu.RUnlock()

	var out []entry
	for _, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !within(e.pkg, prefix) {
			continue
		}
		if _, hidden := e.value.(Invisible); hidden {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].pkg != out[j].pkg {
			return out[i].pkg < out[j].pkg
		}
		return out[i].seq < out[j].seq
	})
	return out, nil
}

func within(pkg, prefix string) bool {
	return pkg == prefix || strings.HasPrefix(pkg, prefix+"/")
}

var defaultCatalog = NewCatalog()

// Register adds values to the process-wide catalog.
func Register(pkg string, values ...any) {
	defaultCatalog.Add(pkg, values...)
}

// Default returns the process-wide catalog.
func Default() *Catalog {
	return defaultCatalog
}

// CatalogScanner scans a Catalog.
type CatalogScanner struct {
	catalog *Catalog

	mu          sync.Mutex
	cache       map[string][]entry
	cleaned     bool
	invocations int
}

// NewCatalogScanner returns a scanner over c, or over the process-wide
// catalog when c is nil.
func NewCatalogScanner(c *Catalog) *CatalogScanner {
	if c == nil {
		c = defaultCatalog
	}
	return &CatalogScanner{catalog: c, cache: make(map[string][]entry)}
}

// Scan implements Scanner. A value reachable through several prefixes is
// returned once.
func (s *CatalogScanner) Scan(ctx context.Context, packages []string) ([]any, error) {
	for _, p := range packages {
		if strings.TrimSpace(p) == "" {
			return nil, errs.Precondition("scan", "empty package name")
		}
	}

	s.mu.Lock()
	if s.cleaned {
		s.mu.Unlock()
		return nil, errs.State("scan", "scanner already cleaned up")
	}
	s.invocations++
	s.mu.Unlock()

	results := make([][]entry, len(packages))
	g, gctx := errgroup.WithContext(ctx)
	for i, pkg := range packages {
		g.Go(func() error {
			if cached, ok := s.cached(pkg); ok {
				results[i] = cached
				return nil
			}
			found, err := s.catalog.collect(gctx, pkg)
			if err != nil {
				return fmt.Errorf("scan %s: %w", pkg, err)
			}
			s.store(pkg, found)
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	types := make(map[reflect.Type]bool)
	var out []any
	for _, found := range results {
		for _, e := range found {
			if seen[e.seq] {
				continue
			}
			seen[e.seq] = true
			t := reflect.TypeOf(e.value)
			if types[t] {
				logging.Debug("Scanner", "Skipping second catalog value of type %s in %s", t, e.pkg)
				continue
			}
			types[t] = true
			out = append(out, e.value)
		}
	}
	logging.Debug("Scanner", "Scanned %v: %d values", packages, len(out))
	return out, nil
}

func (s *CatalogScanner) cached(pkg string) ([]entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, ok := s.cache[pkg]
	return found, ok
}

func (s *CatalogScanner) store(pkg string, found []entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[pkg] = found
}

// Invocations returns how many times Scan was called.
func (s *CatalogScanner) Invocations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invocations
}

// Cleanup drops cached results. Later scans fail.
func (s *CatalogScanner) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned {
		return
	}
	s.cleaned = true
	s.cache = nil
	logging.Debug("Scanner", "Scanner cleaned up after %d scans", s.invocations)
}

// Cleaned reports whether Cleanup was called.
func (s *CatalogScanner) Cleaned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleaned
}
