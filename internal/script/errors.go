package script

import "errors"

// Errors for script operations.
var (
	// ErrClosed is returned when running on a closed runtime.
	ErrClosed = errors.New("lua runtime is closed")

	// ErrTimeout is returned when a chunk runs past the runtime timeout.
	ErrTimeout = errors.New("lua execution timeout")
)
