package health

import "errors"

var (
	// ErrCheckFailed indicates a check found its component outside the
	// configured limits.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a check did not finish in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under the
	// requested name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrNilStore indicates a store checker was built without a store.
	ErrNilStore = errors.New("health: nil store")

	// ErrNilJanitor indicates a janitor checker was built without a
	// janitor.
	ErrNilJanitor = errors.New("health: nil janitor")
)
