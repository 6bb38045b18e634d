package app

import (
	"context"
	"sync"

	"rig/internal/bundle"
	"rig/internal/environment"
	"rig/internal/installer"
	"rig/internal/lifecycle"
	"rig/internal/module"
	"rig/internal/option"
)

type marker interface {
	Mark() string
}

type jobExt struct{ name string }

func (j *jobExt) Mark() string { return j.name }

type orphanExt struct{}

// markerInstaller claims every marker extension and records its calls.
type markerInstaller struct {
	calls    int
	received []any
}

func (m *markerInstaller) Matches(ext any) bool {
	_, ok := ext.(marker)
	return ok
}

func (m *markerInstaller) Install(_ installer.Target, exts []any) error {
	m.calls++
	m.received = append(m.received, exts...)
	return nil
}

type valueModule struct {
	name  string
	value string
}

func (m valueModule) Configure(b *module.Binder) error {
	b.Bind(module.KeyOf[string](m.name), m.value)
	return nil
}

type hostModule struct{}

func (hostModule) Configure(b *module.Binder) error {
	b.Bind(module.KeyOf[string]("host"), "from host")
	return nil
}

type lookupModule struct{}

func (lookupModule) Configure(b *module.Binder) error {
	b.Bind(module.KeyOf[string]("lookup"), "from lookup")
	return nil
}

type hookedModule struct{}

func (hookedModule) Configure(b *module.Binder) error {
	b.Bind(module.KeyOf[string]("hooked"), "listener hook")
	return nil
}

type rootModule struct{}

func (rootModule) Configure(b *module.Binder) error {
	b.Bind(module.KeyOf[string]("k"), "a")
	b.Bind(module.KeyOf[string]("k2"), "root only")
	return nil
}

type overModule struct{}

func (overModule) Configure(b *module.Binder) error {
	b.Bind(module.KeyOf[string]("k"), "b")
	return nil
}

// firstLimit and secondLimit bind the same key.
type firstLimit struct{}

func (firstLimit) Configure(b *module.Binder) error {
	b.Bind(module.KeyOf[int]("limit"), 1)
	return nil
}

type secondLimit struct{}

func (secondLimit) Configure(b *module.Binder) error {
	b.Bind(module.KeyOf[int]("limit"), 2)
	return nil
}

// awareModule records what the bootstrap hands it.
type awareModule struct {
	env     *environment.Environment
	cfg     any
	options option.Reader
}

func (m *awareModule) SetEnvironment(env *environment.Environment) { m.env = env }
func (m *awareModule) SetConfiguration(cfg any)                    { m.cfg = cfg }
func (m *awareModule) SetOptions(options option.Reader)            { m.options = options }
func (m *awareModule) Configure(*module.Binder) error              { return nil }

type service struct {
	mu      sync.Mutex
	started bool
	stopped bool
}

func (s *service) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

func (s *service) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

type greet struct{}

func (greet) Name() string                        { return "greet" }
func (greet) Description() string                 { return "print a greeting" }
func (greet) Run(context.Context, []string) error { return nil }

type hostBundle struct{}

func (hostBundle) Initialize(b *bundle.Bootstrap) error {
	b.Modules(hostModule{})
	return nil
}

type lookupBundle struct{}

func (lookupBundle) Initialize(b *bundle.Bootstrap) error {
	b.Modules(lookupModule{})
	return nil
}

// fakeScanner serves fixed values and counts its calls.
type fakeScanner struct {
	values   []any
	scans    int
	cleanups int
}

func (s *fakeScanner) Scan(_ context.Context, _ []string) ([]any, error) {
	s.scans++
	return s.values, nil
}

func (s *fakeScanner) Cleanup() { s.cleanups++ }

// phaseRecorder collects the phases it is notified of.
type phaseRecorder struct {
	phases []lifecycle.Phase
	runs   map[string]bool
}

func (r *phaseRecorder) OnEvent(ev lifecycle.Event) error {
	r.phases = append(r.phases, ev.Phase())
	if r.runs == nil {
		r.runs = map[string]bool{}
	}
	r.runs[ev.Run()] = true
	return nil
}

// hookListener is a listener that also configures the builder.
type hookListener struct{ configured bool }

func (h *hookListener) OnEvent(lifecycle.Event) error { return nil }

func (h *hookListener) Configure(b *Builder) {
	h.configured = true
	b.Modules(hookedModule{})
}

// plainBuilder returns a builder that neither looks up bundles nor
// registers the core installers.
func plainBuilder() *Builder {
	return New().NoDefaultInstallers().DisableBundleLookup()
}
