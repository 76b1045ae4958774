package domain

import "errors"

var (
	// ErrDuplicateCapability is returned when registering a capability whose
	// name is already taken.
	ErrDuplicateCapability = errors.New("capability already registered")
	// ErrUnknownCheckpoint is returned when a resume references a checkpoint
	// that does not exist (or was garbage-collected).
	ErrUnknownCheckpoint = errors.New("unknown checkpoint")
	// ErrAlreadyResolved is returned when a resume targets a checkpoint that
	// has already been consumed. Exactly one resume is honored per checkpoint.
	ErrAlreadyResolved = errors.New("checkpoint already resolved")
)

// Stable error codes surfaced to external callers. Internal detail never
// travels with these; it stays in the logs.
const (
	CodeUnknownCheckpoint = "unknown_checkpoint"
	CodeAlreadyResolved   = "already_resolved"
	CodeLoopExceeded      = "reasoning_loop_exceeded"
	CodeInternal          = "internal_error"
	CodeBadRequest        = "bad_request"
)
