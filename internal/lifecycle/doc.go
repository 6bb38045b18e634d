// Package lifecycle defines the bootstrap phases and the broadcaster that
// announces them to listeners.
//
// # Phases
//
// A bootstrap run moves strictly forward through:
//
//	Configured → Initialization → RunStarted → BundlesResolved →
//	InjectionReady → ContainerCreated → ExtensionsInstalled →
//	ApplicationRunning → ShutdownStarted → ShutdownComplete
//
// Each phase is announced at most once. Phases may be skipped (a run that
// has no host skips Initialization) but never revisited, and the shutdown
// phases are only announced after ApplicationRunning.
//
// # Events
//
// Every phase has its own payload struct carrying the facts known at that
// point: resolved bundles, module and extension types, the container. The
// payload slices belong to the event; listeners must not modify them.
//
// # Listeners
//
// Listeners are called synchronously in registration order. The first
// listener error stops the broadcast and is returned as an
// errs.ListenerError, which aborts the bootstrap. Registering the same
// comparable listener twice has no effect.
//
// Two listeners are provided: DebugListener prints a banner per phase, and
// SystemdNotifier reports readiness and shutdown to systemd.
package lifecycle
