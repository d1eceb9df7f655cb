package pipeline

import (
	"reflect"

	"github.com/google/uuid"
)

// Envelope is the type-erased view of a Request as seen by interceptors.
type Envelope interface {
	// CorrelationID returns the unique id assigned to this request.
	CorrelationID() string

	// TypeKey returns the stable name of the payload type.
	TypeKey() string

	// PayloadAny returns the payload without type information.
	PayloadAny() any
}

// Request is an immutable envelope around a typed payload.
//
// The correlation id identifies one request instance and never participates
// in cache fingerprinting: two requests with equal payloads are logically
// identical regardless of their ids.
type Request[P any] struct {
	id      string
	payload P
}

// NewRequest creates a Request with a generated correlation id.
func NewRequest[P any](payload P) Request[P] {
	return Request[P]{id: uuid.NewString(), payload: payload}
}

// NewRequestWithID creates a Request with the given correlation id.
func NewRequestWithID[P any](id string, payload P) Request[P] {
	return Request[P]{id: id, payload: payload}
}

// CorrelationID returns the unique id assigned to this request.
func (r Request[P]) CorrelationID() string { return r.id }

// Payload returns the typed payload.
func (r Request[P]) Payload() P { return r.payload }

// PayloadAny returns the payload without type information.
func (r Request[P]) PayloadAny() any { return r.payload }

// TypeKey returns the stable name of P.
func (r Request[P]) TypeKey() string { return TypeKeyFor[P]() }

var _ Envelope = Request[struct{}]{}

// TypeKeyFor returns the stable name of P: import path and type name for
// named types, Go syntax otherwise. The name is stable across processes
// and releases as long as the type keeps its package and name.
func TypeKeyFor[P any]() string {
	return typeKey(reflect.TypeOf((*P)(nil)).Elem())
}

func typeKey(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + typeKey(t.Elem())
	}
	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.Name()
	}
	return t.String()
}
