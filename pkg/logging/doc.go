// Package logging provides a structured logging system for rig with unified
// log handling and subsystem tagging.
//
// This package is built on Go's standard slog package, providing consistent
// logging behavior with structured output and level filtering.
//
// # Log Levels
//   - **Debug**: Detailed information about registration and resolution decisions
//   - **Info**: Phase transitions and summary counts
//   - **Warn**: Recoverable oddities (ignored override modules, duplicate registrations)
//   - **Error**: Failures that abort the bootstrap run
//
// # Usage Examples
//
//	import "rig/pkg/logging"
//
//	// Initialize with Info level text logging to stdout
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	// JSON output for log shippers
//	logging.Init(logging.LevelDebug, logging.FormatJSON, os.Stderr)
//
//	logging.Info("Bootstrap", "Run phase started")
//	logging.Debug("Registry", "Registered %s from %s", typeName, source)
//	logging.Warn("Modules", "Override module %s ignored", typeName)
//	logging.Error("Bootstrap", err, "Container creation failed")
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Bootstrap**: Phase orchestration
//   - **Registry**: Item registration and disabling
//   - **Bundles**: Bundle expansion and lookup
//   - **Installers**: Extension matching and activation
//   - **Scanner**: Catalog scanning
//   - **Lifecycle**: Phase events
//   - **Config**: Configuration loading and validation
//
// # Run Attributes
//
// With attaches attributes (such as the bootstrap run id) that are appended to
// every following entry.
//
// # Thread Safety
//
// Configuration and logging are safe for concurrent use; the logger reference
// and shared attributes are guarded by a read-write mutex.
package logging
