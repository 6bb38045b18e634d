// Package environment is the runtime handle installers activate extensions
// into: managed objects started and stopped with the application, named
// health checks and named tasks.
package environment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"rig/pkg/logging"
)

// Managed is started after the container is ready and stopped on shutdown.
type Managed interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// HealthCheck reports the health of one dependency.
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// Task is an administrative operation that can be triggered by name.
type Task interface {
	Name() string
	Execute(ctx context.Context, params map[string]string) error
}

// Environment collects what installers register. It is safe for concurrent
// use.
type Environment struct {
	mu          sync.Mutex
	name        string
	managed     []Managed
	started     int
	running     bool
	checks      map[string]HealthCheck
	checkOrder  []string
	tasks       map[string]Task
	uniqueNames bool
}

// New creates an environment named name. Health check names must be unique
// unless AllowDuplicateHealthChecks is called.
func New(name string) *Environment {
	return &Environment{
		name:        name,
		checks:      make(map[string]HealthCheck),
		tasks:       make(map[string]Task),
		uniqueNames: true,
	}
}

// Name returns the environment name.
func (e *Environment) Name() string { return e.name }

// AllowDuplicateHealthChecks makes a later health check replace an earlier
// one with the same name.
func (e *Environment) AllowDuplicateHealthChecks() {
	e.mu.Lock()
	e.uniqueNames = false
	e.mu.Unlock()
}

// Manage adds a managed object. Objects are started in the order added.
func (e *Environment) Manage(m Managed) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.managed = append(e.managed, m)
}

// Managed returns the managed objects in start order.
func (e *Environment) Managed() []Managed {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Managed(nil), e.managed...)
}

// RegisterHealthCheck adds a named health check.
func (e *Environment) RegisterHealthCheck(hc HealthCheck) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	name := hc.Name()
	if name == "" {
		return fmt.Errorf("health check %T has no name", hc)
	}
	if _, exists := e.checks[name]; exists {
		if e.uniqueNames {
			return fmt.Errorf("health check %q already registered", name)
		}
	} else {
		e.checkOrder = append(e.checkOrder, name)
	}
	e.checks[name] = hc
	return nil
}

// RegisterTask adds a named task.
func (e *Environment) RegisterTask(task Task) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	name := task.Name()
	if name == "" {
		return fmt.Errorf("task %T has no name", task)
	}
	if _, exists := e.tasks[name]; exists {
		return fmt.Errorf("task %q already registered", name)
	}
	e.tasks[name] = task
	return nil
}

// HealthCheckNames returns check names in registration order.
func (e *Environment) HealthCheckNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.checkOrder...)
}

// TaskNames returns task names sorted.
func (e *Environment) TaskNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.tasks))
	for name := range e.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start starts every managed object in order. When one fails, the objects
// already started are stopped in reverse order and the start error returned.
func (e *Environment) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return errors.New("environment already started")
	}
	managed := append([]Managed(nil), e.managed...)
	e.mu.Unlock()

	for i, m := range managed {
		if err := m.Start(ctx); err != nil {
			logging.Error("Environment", err, "Failed to start %T", m)
			rollback := stopAll(ctx, managed[:i])
			return errors.Join(fmt.Errorf("start %T: %w", m, err), rollback)
		}
		logging.Debug("Environment", "Started %T", m)
	}

	e.mu.Lock()
	e.running = true
	e.started = len(managed)
	e.mu.Unlock()
	return nil
}

// Stop stops started managed objects in reverse order. Every object is asked
// to stop; the errors are joined.
func (e *Environment) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	managed := append([]Managed(nil), e.managed[:e.started]...)
	e.running = false
	e.started = 0
	e.mu.Unlock()

	return stopAll(ctx, managed)
}

// Running reports whether Start completed and Stop was not called since.
func (e *Environment) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func stopAll(ctx context.Context, managed []Managed) error {
	var errs []error
	for i := len(managed) - 1; i >= 0; i-- {
		if err := managed[i].Stop(ctx); err != nil {
			logging.Warn("Environment", "Failed to stop %T: %v", managed[i], err)
			errs = append(errs, fmt.Errorf("stop %T: %w", managed[i], err))
			continue
		}
		logging.Debug("Environment", "Stopped %T", managed[i])
	}
	return errors.Join(errs...)
}

// CheckHealth runs every health check and returns the failures by name.
func (e *Environment) CheckHealth(ctx context.Context) map[string]error {
	e.mu.Lock()
	names := append([]string(nil), e.checkOrder...)
	checks := make([]HealthCheck, len(names))
	for i, name := range names {
		checks[i] = e.checks[name]
	}
	e.mu.Unlock()

	failures := make(map[string]error)
	for i, hc := range checks {
		if err := hc.Check(ctx); err != nil {
			failures[names[i]] = err
		}
	}
	return failures
}

// RunTask executes the task registered under name.
func (e *Environment) RunTask(ctx context.Context, name string, params map[string]string) error {
	e.mu.Lock()
	task, ok := e.tasks[name]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	logging.Info("Environment", "Running task %s", name)
	return task.Execute(ctx, params)
}
