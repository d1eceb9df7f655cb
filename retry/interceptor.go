package retry

import (
	"context"

	"github.com/jonwraymond/relay/pipeline"
)

// DefaultInterceptorOrder places retrying innermost, directly around the
// terminal handler, so outer interceptors observe one settled outcome.
const DefaultInterceptorOrder = 100

// Interceptor reruns the rest of the pipeline according to its executor's
// policy.
type Interceptor struct {
	executor *Executor
}

// NewInterceptor creates a retrying interceptor around executor.
func NewInterceptor(executor *Executor) (*Interceptor, error) {
	if executor == nil {
		return nil, ErrNilExecutor
	}
	return &Interceptor{executor: executor}, nil
}

// Name identifies the interceptor in logs and events.
func (i *Interceptor) Name() string { return "retry" }

// DefaultOrder returns the default execution order.
func (i *Interceptor) DefaultOrder() int { return DefaultInterceptorOrder }

// Intercept executes the remainder of the pipeline under the retry policy,
// labeling emitted events with the request type.
func (i *Interceptor) Intercept(ctx context.Context, env pipeline.Envelope, next pipeline.Next) (pipeline.Outcome, error) {
	return i.executor.Execute(ctx, env.TypeKey(), Operation(next))
}

var _ pipeline.Interceptor = (*Interceptor)(nil)
var _ pipeline.Ordered = (*Interceptor)(nil)
