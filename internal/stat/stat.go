package stat

import (
	"sort"
	"sync"
	"time"
)

// Name identifies a recorded statistic.
type Name string

// Timers.
const (
	BootstrapTime            Name = "bootstrap"
	InitializationTime       Name = "initialization"
	RunTime                  Name = "run"
	CommandTime              Name = "commands"
	ScanTime                 Name = "scan"
	BundleTime               Name = "bundles"
	BundleLookupTime         Name = "bundles.lookup"
	InstallersTime           Name = "installers"
	ExtensionsResolutionTime Name = "extensions.resolution"
	ModulesTime              Name = "modules"
	ContainerCreationTime    Name = "container"
	ExtensionsActivationTime Name = "extensions.activation"
	ListenersTime            Name = "listeners"
	ShutdownTime             Name = "shutdown"
)

// Counters.
const (
	ScannedValuesCount     Name = "scan.values"
	ScanInvocationsCount   Name = "scan.invocations"
	BundlesProcessedCount  Name = "bundles.processed"
	ExtensionsCount        Name = "extensions"
	InstallersCount        Name = "installers"
	ModulesCount           Name = "modules"
	OverridingModulesCount Name = "modules.overriding"
	CommandsCount          Name = "commands"
)

// Entry is a snapshot of one statistic.
type Entry struct {
	Name     Name
	Duration time.Duration
	Count    int
	IsTimer  bool
}

// Stats holds all recorded values for one bootstrap run.
type Stats struct {
	mu        sync.Mutex
	durations map[Name]time.Duration
	running   map[Name]time.Time
	counters  map[Name]int
	now       func() time.Time
}

// New creates an empty Stats.
func New() *Stats {
	return &Stats{
		durations: make(map[Name]time.Duration),
		running:   make(map[Name]time.Time),
		counters:  make(map[Name]int),
		now:       time.Now,
	}
}

// Timer is a running stopwatch bound to a statistic name.
type Timer struct {
	stats *Stats
	name  Name
	once  sync.Once
	spent time.Duration
}

// Timer starts (or resumes) the timer for name. If the timer is already
// running the call only returns a handle; the first Stop ends the interval.
func (s *Stats) Timer(name Name) *Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.running[name]; !ok {
		s.running[name] = s.now()
	}
	if _, ok := s.durations[name]; !ok {
		s.durations[name] = 0
	}
	return &Timer{stats: s, name: name}
}

// Stop ends the interval and returns the accumulated total for the name.
// Calling Stop more than once is a no-op.
func (t *Timer) Stop() time.Duration {
	t.once.Do(func() {
		s := t.stats
		s.mu.Lock()
		defer s.mu.Unlock()
		if started, ok := s.running[t.name]; ok {
			s.durations[t.name] += s.now().Sub(started)
			delete(s.running, t.name)
		}
		t.spent = s.durations[t.name]
	})
	return t.spent
}

// Count adds delta to the counter name.
func (s *Stats) Count(name Name, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] += delta
}

// Duration returns the accumulated time for name. A running timer reports
// the time spent so far.
func (s *Stats) Duration(name Name) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.durations[name]
	if started, ok := s.running[name]; ok {
		d += s.now().Sub(started)
	}
	return d
}

// Counter returns the current value of counter name.
func (s *Stats) Counter(name Name) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[name]
}

// Snapshot returns every recorded statistic, timers first, each group sorted
// by name.
func (s *Stats) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.durations)+len(s.counters))
	for name, d := range s.durations {
		if started, ok := s.running[name]; ok {
			d += s.now().Sub(started)
		}
		entries = append(entries, Entry{Name: name, Duration: d, IsTimer: true})
	}
	for name, c := range s.counters {
		entries = append(entries, Entry{Name: name, Count: c})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsTimer != entries[j].IsTimer {
			return entries[i].IsTimer
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
