package errs

import (
	"errors"
	"fmt"
	"time"
)

// PreconditionError reports an invalid registration or configuration call.
type PreconditionError struct {
	// Op names the rejected operation (e.g. "option", "initialize").
	Op string
	// Reason describes what was wrong.
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition failed: %s", e.Op, e.Reason)
}

// Precondition creates a PreconditionError with a formatted reason.
func Precondition(op, format string, args ...any) *PreconditionError {
	return &PreconditionError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsPrecondition checks if an error is or wraps a PreconditionError.
func IsPrecondition(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}

// ResolutionError reports an item that could not be resolved against the
// active configuration.
type ResolutionError struct {
	// ItemType is the type identity of the offending item.
	ItemType string
	Reason   string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: %s", e.ItemType, e.Reason)
}

// IsResolution checks if an error is or wraps a ResolutionError.
func IsResolution(err error) bool {
	var target *ResolutionError
	return errors.As(err, &target)
}

// StateError reports an operation attempted in a state that forbids it.
type StateError struct {
	Op    string
	State string
	// Err is the failure that left the object in State, if any.
	Err error
}

func (e *StateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s not allowed: %s: %v", e.Op, e.State, e.Err)
	}
	return fmt.Sprintf("%s not allowed: %s", e.Op, e.State)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// State creates a StateError.
func State(op, state string) *StateError {
	return &StateError{Op: op, State: state}
}

// Failed creates a StateError for an operation refused because an earlier
// step failed with cause.
func Failed(op string, cause error) *StateError {
	return &StateError{Op: op, State: "bootstrap failed", Err: cause}
}

// IsState checks if an error is or wraps a StateError.
func IsState(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}

// ContainerError wraps a container factory failure.
type ContainerError struct {
	Phase   string
	Elapsed time.Duration
	Err     error
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("container creation failed during %s after %s: %v", e.Phase, e.Elapsed.Round(time.Microsecond), e.Err)
}

func (e *ContainerError) Unwrap() error {
	return e.Err
}

// IsContainer checks if an error is or wraps a ContainerError.
func IsContainer(err error) bool {
	var target *ContainerError
	return errors.As(err, &target)
}

// ListenerError wraps an error returned by a lifecycle listener.
type ListenerError struct {
	Phase string
	Err   error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("lifecycle listener failed on %s: %v", e.Phase, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// IsListener checks if an error is or wraps a ListenerError.
func IsListener(err error) bool {
	var target *ListenerError
	return errors.As(err, &target)
}
