package domain

import "errors"

var (
	// ErrInvalidDate reports a malformed local date (expected YYYY-MM-DD).
	ErrInvalidDate = errors.New("invalid date")

	// ErrUnresolvableDescriptor reports a due descriptor that does not
	// match the grammar for its frequency.
	ErrUnresolvableDescriptor = errors.New("unresolvable due descriptor")

	ErrInstanceNotFound  = errors.New("task instance not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrAlreadyTerminal   = errors.New("task instance already terminal")
	ErrNotCompleted      = errors.New("task instance not completed")

	// ErrStoreUnavailable wraps store failures; never retried internally.
	ErrStoreUnavailable = errors.New("store unavailable")
)
