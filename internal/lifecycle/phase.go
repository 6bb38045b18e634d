package lifecycle

import "fmt"

// Phase is a bootstrap stage.
type Phase int

const (
	Configured Phase = iota
	Initialization
	RunStarted
	BundlesResolved
	InjectionReady
	ContainerCreated
	ExtensionsInstalled
	ApplicationRunning
	ShutdownStarted
	ShutdownComplete
)

var phaseNames = []string{
	"Configured",
	"Initialization",
	"RunStarted",
	"BundlesResolved",
	"InjectionReady",
	"ContainerCreated",
	"ExtensionsInstalled",
	"ApplicationRunning",
	"ShutdownStarted",
	"ShutdownComplete",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Phases returns every phase in order.
func Phases() []Phase {
	out := make([]Phase, len(phaseNames))
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// IsShutdown reports whether p belongs to the shutdown sequence.
func (p Phase) IsShutdown() bool {
	return p >= ShutdownStarted
}
