package auth

import "errors"

var (
	// ErrMissingToken is returned when the context carries no bearer token.
	ErrMissingToken = errors.New("auth: missing bearer token")

	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenMalformed is returned when a token cannot be parsed at all.
	ErrTokenMalformed = errors.New("auth: token malformed")

	// ErrKeyNotFound is returned when no signing key matches the token's
	// key id.
	ErrKeyNotFound = errors.New("auth: signing key not found")

	// ErrNilKeyProvider is returned by NewVerifier without a key source.
	ErrNilKeyProvider = errors.New("auth: nil key provider")

	// ErrNilVerifier is returned by NewInterceptor without a verifier.
	ErrNilVerifier = errors.New("auth: nil verifier")
)
