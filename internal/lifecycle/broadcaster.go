package lifecycle

import (
	"fmt"
	"reflect"
	"sync"

	"rig/internal/errs"
	"rig/pkg/logging"
)

// Listener receives lifecycle events.
type Listener interface {
	OnEvent(ev Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ev Event) error

func (f ListenerFunc) OnEvent(ev Event) error { return f(ev) }

type phaseListener struct {
	phase Phase
	fn    func(Event) error
}

func (l *phaseListener) OnEvent(ev Event) error {
	if ev.Phase() != l.phase {
		return nil
	}
	return l.fn(ev)
}

// On returns a listener that only sees events of phase.
func On(phase Phase, fn func(Event) error) Listener {
	return &phaseListener{phase: phase, fn: fn}
}

const notStarted Phase = -1

// Broadcaster enforces the phase order and dispatches events.
type Broadcaster struct {
	mu        sync.Mutex
	listeners []Listener
	current   Phase
	history   []Phase
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{current: notStarted}
}

// Listen adds listeners. Comparable listeners already present are skipped.
func (b *Broadcaster) Listen(listeners ...Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range listeners {
		if l == nil || b.contains(l) {
			continue
		}
		b.listeners = append(b.listeners, l)
	}
}

func (b *Broadcaster) contains(l Listener) bool {
	if !reflect.TypeOf(l).Comparable() {
		return false
	}
	for _, existing := range b.listeners {
		if reflect.TypeOf(existing) == reflect.TypeOf(l) && existing == l {
			return true
		}
	}
	return false
}

// Listeners returns the registered listeners in order.
func (b *Broadcaster) Listeners() []Listener {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Listener(nil), b.listeners...)
}

// Current returns the last announced phase and whether any was announced.
func (b *Broadcaster) Current() (Phase, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.current != notStarted
}

// Reached reports whether phase p or a later one was announced.
func (b *Broadcaster) Reached(p Phase) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current >= p
}

// History returns the announced phases in order.
func (b *Broadcaster) History() []Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Phase(nil), b.history...)
}

// Fire announces ev to every listener. Phases must be announced one after
// another without gaps; the shutdown pair only follows ApplicationRunning.
// The phase is recorded as reached even when a listener fails.
func (b *Broadcaster) Fire(ev Event) error {
	phase := ev.Phase()

	b.mu.Lock()
	if err := b.checkNext(phase); err != nil {
		b.mu.Unlock()
		return err
	}
	b.current = phase
	b.history = append(b.history, phase)
	listeners := append([]Listener(nil), b.listeners...)
	b.mu.Unlock()

	logging.Debug("Lifecycle", "Phase %s (%d listeners)", phase, len(listeners))
	for _, l := range listeners {
		if err := l.OnEvent(ev); err != nil {
			logging.Error("Lifecycle", err, "Listener %T failed on %s", l, phase)
			return &errs.ListenerError{Phase: phase.String(), Err: err}
		}
	}
	return nil
}

// checkNext reports why phase cannot follow the current one. b.mu is held.
func (b *Broadcaster) checkNext(phase Phase) error {
	op := "fire " + phase.String()
	switch {
	case phase < 0 || int(phase) >= len(phaseNames):
		return errs.State(op, "unknown phase")
	case phase <= b.current:
		return errs.State(op, fmt.Sprintf("phase %s already reached", b.current))
	case phase.IsShutdown() && b.current < ApplicationRunning:
		return errs.State(op, "application never reached ApplicationRunning")
	case phase != b.current+1:
		return errs.State(op, fmt.Sprintf("expected %s after %s", b.current+1, b.currentName()))
	}
	return nil
}

func (b *Broadcaster) currentName() string {
	if b.current == notStarted {
		return "start"
	}
	return b.current.String()
}
