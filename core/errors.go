package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that no ActorState exists for the requested
	// (actorType, actorId) pair. The orchestrator interprets it as
	// "initialize" on execute and as a hard failure on query.
	ErrNotFound = errors.New("actor not found")

	// ErrConflict signals that a Save lost an optimistic-concurrency race:
	// the persisted version no longer matches the version read at load time.
	// Callers may re-load and retry; the core never retries on their behalf.
	ErrConflict = errors.New("version conflict")
)

// SpecNotFoundError reports an actor type with no registered spec.
type SpecNotFoundError struct {
	ActorType string
}

func (e *SpecNotFoundError) Error() string {
	return fmt.Sprintf("no spec registered for actor type %q", e.ActorType)
}

// InvalidStateError reports a persisted state name the current spec no
// longer recognizes (spec drift after persistence).
type InvalidStateError struct {
	ActorType string
	ActorID   string
	State     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("actor %s/%s is in state %q which is unknown to the current spec", e.ActorType, e.ActorID, e.State)
}

// TransitionNotAllowedError reports that the current state defines no
// transition for the incoming event.
type TransitionNotAllowedError struct {
	State string
	Event string
}

func (e *TransitionNotAllowedError) Error() string {
	return fmt.Sprintf("no transition for event %q in state %q", e.Event, e.State)
}

// GuardNotFoundError reports a transition referencing a guard name absent
// from the spec's guard table.
type GuardNotFoundError struct {
	Guard string
}

func (e *GuardNotFoundError) Error() string {
	return fmt.Sprintf("guard %q is not defined", e.Guard)
}

// GuardFailedError reports a guard predicate evaluating to false. No
// mutation occurs and nothing is persisted.
type GuardFailedError struct {
	Guard string
	Event string
}

func (e *GuardFailedError) Error() string {
	return fmt.Sprintf("guard %q rejected event %q", e.Guard, e.Event)
}

// ActionNotFoundError reports a transition referencing an action name absent
// from the spec's action table.
type ActionNotFoundError struct {
	Action string
}

func (e *ActionNotFoundError) Error() string {
	return fmt.Sprintf("action %q is not defined", e.Action)
}

// ValidationError reports an action rejecting structurally invalid command
// data or context.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a *ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a failure inside a Store implementation, preserving
// the operation name for diagnostics. Conflict and not-found conditions are
// detectable through errors.Is with ErrConflict / ErrNotFound.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err with the failing storage operation.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsNotFound reports whether err represents a missing actor.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err represents an optimistic-concurrency
// conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
