package retry

import "errors"

// Sentinel errors for retry operations.
var (
	// ErrNilOperation is returned when Execute receives a nil operation.
	ErrNilOperation = errors.New("retry: nil operation")

	// ErrNilExecutor is returned when an interceptor is built without an
	// executor.
	ErrNilExecutor = errors.New("retry: nil executor")
)
