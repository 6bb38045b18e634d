// Package errs defines the error taxonomy shared by every bootstrap stage.
//
// Four categories exist and none of them is ever retried:
//
//   - PreconditionError: a registration or configuration call was invalid
//     (wrong option type, unknown option key, command search without scanning).
//   - ResolutionError: the resolved item set is inconsistent (an extension that
//     no installer recognizes).
//   - StateError: an operation was attempted in the wrong phase (mutation after
//     the container was created, phases fired out of order).
//   - ContainerError: the container factory failed; the original error is
//     wrapped with the phase and the time spent so far.
//
// ListenerError wraps failures raised by lifecycle listeners.
//
// Use the IsXxx helpers to classify errors; they unwrap.
package errs
