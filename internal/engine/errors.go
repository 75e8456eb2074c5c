package engine

import "errors"

// Error kinds for a single command. Detection always happens before any
// write, so a failed command leaves no partial state behind. Retrying is the
// caller's concern; the engine never retries internally.
var (
	// ErrNotFound: unknown bill, template, or group id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: the record exists but rejects this mutation
	// (closed or archived bill, nothing to unsettle, and so on).
	ErrInvalidState = errors.New("invalid state")

	// ErrPermissionDenied: the actor lacks the role the command requires.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput: non-finite or negative amount, empty required field,
	// non-participant target address, malformed weights string.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCloneFailure: the deep-copy primitive failed. This signals a
	// host-level integrity problem and is fatal for the command.
	ErrCloneFailure = errors.New("clone failed")
)
