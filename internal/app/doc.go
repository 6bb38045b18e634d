// Package app drives application startup for rig.
//
// An application is assembled with a Builder, turned into a Bootstrap by
// Build, and then taken through its lifecycle:
//
//	b := app.New().
//		Modules(&storageModule{}).
//		Bundles(&web.Bundle{}).
//		EnableAutoConfig("example.com/service")
//	boot, err := b.Build()
//	...
//	err = boot.Initialize(ctx, host)
//	err = boot.Run(ctx, cfg, environment.New("service"))
//	...
//	err = boot.Shutdown(ctx)
//
// # Phases
//
// Build applies configuration hooks and announces Configured. Initialize
// scans commands and announces Initialization. Run performs the rest of the
// startup sequence in a fixed order:
//
//  1. RunStarted
//  2. core installers, host bundles and looked-up bundles are queued and all
//     bundles are expanded to a fixed point (BundlesResolved)
//  3. installers and extensions are discovered by package scanning, and
//     every extension is matched to exactly one installer
//  4. aware modules receive the environment, configuration and options
//     (InjectionReady)
//  5. registrations and options are frozen and the container is created
//     (ContainerCreated)
//  6. installers activate their extensions (ExtensionsInstalled)
//  7. environment commands are injected, the scanner is cleaned up, and the
//     environment's managed objects are started (ApplicationRunning)
//
// Shutdown announces ShutdownStarted and ShutdownComplete around stopping the
// environment. It is only valid once ApplicationRunning was reached.
//
// # Application
//
// Application wraps the builder with the ambient runtime taken from
// config.Config: logging, tracing, lifecycle printing, systemd readiness and
// an optional Prometheus endpoint for bootstrap statistics.
//
// Every run carries a random run id that appears in lifecycle events and on
// every log line emitted while the application runs.
package app
