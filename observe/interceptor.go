package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/relay/pipeline"
)

// DefaultInterceptorOrder places the observe interceptor inside cache and
// auth but outside retry, so one span covers all attempts of one execution.
const DefaultInterceptorOrder = -10

// Interceptor wraps pipeline execution with tracing and logging.
//
// Contract:
//   - Outcomes and faults pass through unchanged; observation never alters
//     success/failure classification.
//   - Concurrency: one value serves unlimited concurrent requests.
type Interceptor struct {
	tracer Tracer
	logger Logger
}

// NewInterceptor creates an observing interceptor. A nil tracer disables
// spans; a nil logger disables logging.
func NewInterceptor(tracer Tracer, logger Logger) *Interceptor {
	if tracer == nil {
		tracer = NewNoopTracer()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Interceptor{tracer: tracer, logger: logger}
}

// InterceptorFromObserver creates an observing interceptor from an
// Observer's tracer and logger.
func InterceptorFromObserver(obs Observer) (*Interceptor, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewInterceptor(NewTracer(obs.Tracer()), obs.Logger()), nil
}

// Name identifies the interceptor in logs and events.
func (i *Interceptor) Name() string { return "observe" }

// DefaultOrder returns the default execution order.
func (i *Interceptor) DefaultOrder() int { return DefaultInterceptorOrder }

// Intercept runs next inside a span and logs the completed dispatch.
func (i *Interceptor) Intercept(ctx context.Context, env pipeline.Envelope, next pipeline.Next) (pipeline.Outcome, error) {
	meta := RequestMeta{
		TypeKey:       env.TypeKey(),
		CorrelationID: env.CorrelationID(),
	}

	ctx, span := i.tracer.StartSpan(ctx, meta)
	start := time.Now()

	out, err := next(ctx)

	duration := time.Since(start)
	i.tracer.EndSpan(span, err)

	fields := []Field{
		String("request_type", meta.TypeKey),
		String("correlation_id", meta.CorrelationID),
		Duration("duration", duration),
	}

	switch {
	case err != nil:
		i.logger.Error("dispatch faulted", append(fields, Err(err))...)
	case out != nil && !out.IsSuccess():
		i.logger.Info("dispatch failed", append(fields, Any("errors", out.Errors()))...)
	default:
		i.logger.Info("dispatch succeeded", fields...)
	}

	return out, err
}

var _ pipeline.Interceptor = (*Interceptor)(nil)
var _ pipeline.Ordered = (*Interceptor)(nil)
