package dispatch

import "errors"

// Sentinel errors for dispatch operations.
var (
	// ErrNilRegistry is returned when a dispatcher is built without a
	// registry.
	ErrNilRegistry = errors.New("dispatch: nil registry")

	// ErrNilHandler is returned when a registration carries no handler.
	ErrNilHandler = errors.New("dispatch: nil handler")

	// ErrEmptyTypeKey is returned when a registration carries no request
	// type key.
	ErrEmptyTypeKey = errors.New("dispatch: empty request type key")

	// ErrAlreadyRegistered is returned when a request type is registered
	// twice. Use Replace for intentional swaps.
	ErrAlreadyRegistered = errors.New("dispatch: request type already registered")

	// ErrPayloadMismatch is returned as a fault when an envelope's payload
	// does not match the registered handler's payload type.
	ErrPayloadMismatch = errors.New("dispatch: payload type mismatch")

	// ErrOutcomeMismatch is returned as a fault when a successful outcome
	// does not carry the expected result type.
	ErrOutcomeMismatch = errors.New("dispatch: outcome type mismatch")
)
