package pipeline

import "context"

// Next is the bound continuation handed to an interceptor. Calling it runs
// the remainder of the pipeline with the given context.
type Next func(ctx context.Context) (Outcome, error)

// Interceptor is a cross-cutting behavior wrapped around a call.
//
// Contract:
//   - next may be called zero times (short-circuit), exactly once
//     (pass-through), or multiple times (retry).
//   - The returned Outcome must satisfy the pipeline's result contract;
//     an interceptor that cannot construct a typed Result returns Failure.
//   - Implementations must be stateless or internally synchronized: one
//     value serves unlimited concurrent requests.
type Interceptor interface {
	// Name identifies the interceptor in logs and events.
	Name() string

	// Intercept handles env and decides whether and how next runs.
	Intercept(ctx context.Context, env Envelope, next Next) (Outcome, error)
}

// Ordered is implemented by interceptors that carry a default execution
// order. An order set at the binding site with WithOrder always wins.
type Ordered interface {
	DefaultOrder() int
}

// InterceptorFunc is an adapter to allow ordinary functions to be used as
// Interceptors.
type InterceptorFunc struct {
	name string
	fn   func(ctx context.Context, env Envelope, next Next) (Outcome, error)
}

// NewInterceptorFunc creates a new InterceptorFunc.
func NewInterceptorFunc(name string, fn func(ctx context.Context, env Envelope, next Next) (Outcome, error)) *InterceptorFunc {
	return &InterceptorFunc{name: name, fn: fn}
}

// Name identifies the interceptor in logs and events.
func (f *InterceptorFunc) Name() string {
	return f.name
}

// Intercept handles env by calling the wrapped function.
func (f *InterceptorFunc) Intercept(ctx context.Context, env Envelope, next Next) (Outcome, error) {
	return f.fn(ctx, env, next)
}

// Binding attaches an interceptor to a pipeline at a given order.
//
// Lower orders run outermost. Order precedence: WithOrder at the binding
// site, then the interceptor's own DefaultOrder, then zero. Bindings with
// equal order run in registration order.
type Binding struct {
	interceptor Interceptor
	order       int
}

// Bind creates a Binding at the interceptor's default order.
func Bind(i Interceptor) Binding {
	b := Binding{interceptor: i}
	if o, ok := i.(Ordered); ok {
		b.order = o.DefaultOrder()
	}
	return b
}

// WithOrder returns a copy of the Binding with the order overridden.
func (b Binding) WithOrder(order int) Binding {
	b.order = order
	return b
}

// Interceptor returns the bound interceptor.
func (b Binding) Interceptor() Interceptor { return b.interceptor }

// Order returns the effective execution order.
func (b Binding) Order() int { return b.order }
