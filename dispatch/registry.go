package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/relay/pipeline"
)

// Handler is the typed terminal operation for payload P producing T.
// A completed operation returns a Result and a nil error; an unexpected
// fault returns a non-nil error.
type Handler[P, T any] func(ctx context.Context, req pipeline.Request[P]) (pipeline.Result[T], error)

type registration struct {
	handler  pipeline.Handler
	bindings []pipeline.Binding
}

// Registry accumulates handler registrations keyed by request type.
//
// Registration is safe for concurrent use, but changes become visible to a
// Dispatcher only on its next Reload.
type Registry struct {
	mu   sync.RWMutex
	regs map[string]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{regs: make(map[string]registration)}
}

// Register binds a typed handler for payload P, wrapped by the given
// interceptor bindings. Registering the same payload type twice is an
// error.
func Register[P, T any](r *Registry, handler Handler[P, T], bindings ...pipeline.Binding) error {
	if handler == nil {
		return ErrNilHandler
	}
	return r.add(pipeline.TypeKeyFor[P](), erase(handler), bindings, false)
}

// Replace binds a typed handler for payload P, overwriting any existing
// registration for the type.
func Replace[P, T any](r *Registry, handler Handler[P, T], bindings ...pipeline.Binding) error {
	if handler == nil {
		return ErrNilHandler
	}
	return r.add(pipeline.TypeKeyFor[P](), erase(handler), bindings, true)
}

// RegisterHandler binds an erased handler under an explicit type key, for
// callers managing their own envelope types.
func (r *Registry) RegisterHandler(typeKey string, handler pipeline.Handler, bindings ...pipeline.Binding) error {
	if handler == nil {
		return ErrNilHandler
	}
	return r.add(typeKey, handler, bindings, false)
}

// TypeKeys returns the registered request types in sorted order.
func (r *Registry) TypeKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.regs))
	for key := range r.regs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered request types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regs)
}

func (r *Registry) add(typeKey string, handler pipeline.Handler, bindings []pipeline.Binding, replace bool) error {
	if strings.TrimSpace(typeKey) == "" {
		return ErrEmptyTypeKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regs[typeKey]; exists && !replace {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, typeKey)
	}
	r.regs[typeKey] = registration{
		handler:  handler,
		bindings: append([]pipeline.Binding(nil), bindings...),
	}
	return nil
}

// buildAll composes every registration into a pipeline.
func (r *Registry) buildAll() (map[string]pipeline.Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pipes := make(map[string]pipeline.Pipeline, len(r.regs))
	for key, reg := range r.regs {
		pipe, err := pipeline.Build(reg.handler, reg.bindings...)
		if err != nil {
			return nil, fmt.Errorf("dispatch: building pipeline for %s: %w", key, err)
		}
		pipes[key] = pipe
	}
	return pipes, nil
}

// erase adapts a typed handler to the pipeline's erased handler contract.
// Any envelope whose payload is a P is accepted, not only Request[P].
func erase[P, T any](handler Handler[P, T]) pipeline.Handler {
	return func(ctx context.Context, env pipeline.Envelope) (pipeline.Outcome, error) {
		payload, ok := env.PayloadAny().(P)
		if !ok {
			return nil, fmt.Errorf("%w: %s carries %T", ErrPayloadMismatch, env.TypeKey(), env.PayloadAny())
		}
		return handler(ctx, pipeline.NewRequestWithID(env.CorrelationID(), payload))
	}
}
