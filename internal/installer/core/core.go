// Package core provides the installers registered by default: managed
// objects, health checks, tasks and eager container keys.
package core

import (
	"fmt"

	"rig/internal/bundle"
	"rig/internal/container"
	"rig/internal/environment"
	"rig/internal/installer"
	"rig/internal/module"
	"rig/internal/option"
	"rig/pkg/logging"
)

var (
	HealthCheckNamesUnique      = option.Declare("installers", "HealthCheckNamesUnique", option.Bool, true)
	EagerInstancesInDevelopment = option.Declare("installers", "EagerInstancesInDevelopment", option.Bool, false)
)

// Bundle registers the core installers.
type Bundle struct{}

func (Bundle) Initialize(b *bundle.Bootstrap) error {
	b.Installers(
		&ManagedInstaller{},
		&HealthCheckInstaller{},
		&TaskInstaller{},
		&EagerInstaller{},
	)
	return nil
}

// ManagedInstaller adds environment.Managed extensions to the environment.
type ManagedInstaller struct{}

func (*ManagedInstaller) Matches(ext any) bool {
	_, ok := ext.(environment.Managed)
	return ok
}

func (*ManagedInstaller) Install(t installer.Target, exts []any) error {
	for _, ext := range exts {
		t.Environment.Manage(ext.(environment.Managed))
		logging.Debug("Installers", "Managed %T", ext)
	}
	return nil
}

// HealthCheckInstaller registers environment.HealthCheck extensions.
type HealthCheckInstaller struct{}

func (*HealthCheckInstaller) Matches(ext any) bool {
	_, ok := ext.(environment.HealthCheck)
	return ok
}

func (*HealthCheckInstaller) Install(t installer.Target, exts []any) error {
	if t.Options != nil && !t.Options.Bool(HealthCheckNamesUnique) {
		t.Environment.AllowDuplicateHealthChecks()
	}
	for _, ext := range exts {
		if err := t.Environment.RegisterHealthCheck(ext.(environment.HealthCheck)); err != nil {
			return err
		}
	}
	return nil
}

// TaskInstaller registers environment.Task extensions.
type TaskInstaller struct{}

func (*TaskInstaller) Matches(ext any) bool {
	_, ok := ext.(environment.Task)
	return ok
}

func (*TaskInstaller) Install(t installer.Target, exts []any) error {
	for _, ext := range exts {
		if err := t.Environment.RegisterTask(ext.(environment.Task)); err != nil {
			return err
		}
	}
	return nil
}

// Eager extensions name container keys that must be built during startup
// even when the container builds lazily.
type Eager interface {
	EagerKeys() []module.Key
}

// EagerInstaller resolves the keys of Eager extensions. In the Development
// stage it only does so when EagerInstancesInDevelopment is set; the Tool
// stage never builds instances.
type EagerInstaller struct{}

func (*EagerInstaller) Matches(ext any) bool {
	_, ok := ext.(Eager)
	return ok
}

func (*EagerInstaller) Install(t installer.Target, exts []any) error {
	if t.Options != nil {
		switch t.Options.Stage(option.ContainerStage) {
		case container.Tool:
			return nil
		case container.Development:
			if !t.Options.Bool(EagerInstancesInDevelopment) {
				logging.Debug("Installers", "Eager keys left lazy in development stage")
				return nil
			}
		}
	}
	for _, ext := range exts {
		for _, key := range ext.(Eager).EagerKeys() {
			if _, err := t.Container.GetInstance(key); err != nil {
				return fmt.Errorf("eager key %s of %T: %w", key, ext, err)
			}
		}
	}
	return nil
}
