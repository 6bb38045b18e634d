package lifecycle

import (
	"reflect"
	"time"

	"rig/internal/container"
	"rig/internal/environment"
)

// Event is the payload of one phase.
type Event interface {
	Phase() Phase
	Run() string
}

// Header is shared by all events.
type Header struct {
	RunID string
}

func (h Header) Run() string { return h.RunID }

type ConfiguredEvent struct {
	Header
	Hooks     []string
	Listeners int
}

type InitializationEvent struct {
	Header
	Commands []string
}

type RunStartedEvent struct {
	Header
	Configuration any
	Environment   *environment.Environment
}

type BundlesResolvedEvent struct {
	Header
	Bundles  []reflect.Type
	Disabled []reflect.Type
	Lookup   []reflect.Type
}

type InjectionReadyEvent struct {
	Header
	Modules           []reflect.Type
	OverridingModules []reflect.Type
	Installers        []reflect.Type
	Extensions        []reflect.Type
}

type ContainerCreatedEvent struct {
	Header
	Container container.Container
	Elapsed   time.Duration
}

// Installation lists the extensions one installer received.
type Installation struct {
	Installer  reflect.Type
	Extensions []reflect.Type
}

type ExtensionsInstalledEvent struct {
	Header
	Installed []Installation
}

type ApplicationRunningEvent struct {
	Header
	Elapsed time.Duration
}

type ShutdownStartedEvent struct {
	Header
}

type ShutdownCompleteEvent struct {
	Header
	Err error
}

func (ConfiguredEvent) Phase() Phase          { return Configured }
func (InitializationEvent) Phase() Phase      { return Initialization }
func (RunStartedEvent) Phase() Phase          { return RunStarted }
func (BundlesResolvedEvent) Phase() Phase     { return BundlesResolved }
func (InjectionReadyEvent) Phase() Phase      { return InjectionReady }
func (ContainerCreatedEvent) Phase() Phase    { return ContainerCreated }
func (ExtensionsInstalledEvent) Phase() Phase { return ExtensionsInstalled }
func (ApplicationRunningEvent) Phase() Phase  { return ApplicationRunning }
func (ShutdownStartedEvent) Phase() Phase     { return ShutdownStarted }
func (ShutdownCompleteEvent) Phase() Phase    { return ShutdownComplete }
