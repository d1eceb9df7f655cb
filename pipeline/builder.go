package pipeline

import (
	"context"
	"errors"
	"sort"
)

// Handler is the terminal callable implementing the business operation.
// A completed operation returns an Outcome and a nil error; an unexpected
// fault returns a non-nil error and no Outcome.
type Handler func(ctx context.Context, env Envelope) (Outcome, error)

// Pipeline is a fully composed interceptor chain around a terminal
// handler. It is safe for unlimited concurrent reuse.
type Pipeline func(ctx context.Context, env Envelope) (Outcome, error)

var (
	// ErrNilHandler is returned by Build when the handler is nil.
	ErrNilHandler = errors.New("pipeline: nil handler")

	// ErrNilInterceptor is returned by Build when a binding carries no
	// interceptor.
	ErrNilInterceptor = errors.New("pipeline: binding with nil interceptor")
)

// Build composes bindings and a terminal handler into one Pipeline.
//
// Bindings are sorted ascending by order; equal orders keep registration
// order. Wrapping is right to left: the handler is innermost and the
// lowest-order binding outermost. Build is pure: it copies the binding
// slice, mutates nothing, and repeated calls yield equivalent,
// independently usable pipelines.
func Build(handler Handler, bindings ...Binding) (Pipeline, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	ordered := make([]Binding, len(bindings))
	copy(ordered, bindings)
	for _, b := range ordered {
		if b.interceptor == nil {
			return nil, ErrNilInterceptor
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].order < ordered[j].order
	})

	chain := Pipeline(handler)
	for i := len(ordered) - 1; i >= 0; i-- {
		interceptor := ordered[i].interceptor
		inner := chain
		chain = func(ctx context.Context, env Envelope) (Outcome, error) {
			next := func(ctx context.Context) (Outcome, error) {
				return inner(ctx, env)
			}
			return interceptor.Intercept(ctx, env, next)
		}
	}
	return chain, nil
}
