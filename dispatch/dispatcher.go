package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/relay/observe"
	"github.com/jonwraymond/relay/pipeline"
)

// snapshot is an immutable typeKey to pipeline map. A dispatcher swaps
// whole snapshots; in-flight dispatches keep the one they started with.
type snapshot struct {
	pipelines map[string]pipeline.Pipeline
}

// Config configures a Dispatcher.
type Config struct {
	// Logger records routing problems. Nil disables logging.
	Logger observe.Logger

	// Sink receives one Dispatch event per completed dispatch. Nil
	// discards them.
	Sink observe.Sink
}

// Dispatcher routes requests to the pipeline registered for their type.
//
// Contract:
// - Concurrency: safe for unlimited concurrent use; Reload may run
//   alongside Dispatch.
// - Context: ctx flows unchanged into the pipeline.
// - Errors: a fault from the pipeline propagates as the error; a missing
//   registration is a failed Outcome, not an error.
type Dispatcher struct {
	registry *Registry
	snap     atomic.Pointer[snapshot]
	logger   observe.Logger
	sink     observe.Sink
}

// New builds a dispatcher over the registry's current registrations.
func New(registry *Registry, cfg Config) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Sink == nil {
		cfg.Sink = observe.NopSink{}
	}

	d := &Dispatcher{registry: registry, logger: cfg.Logger, sink: cfg.Sink}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reload rebuilds the pipeline snapshot from the registry. Registrations
// added since the last reload become routable; nothing changes when the
// rebuild fails.
func (d *Dispatcher) Reload() error {
	pipes, err := d.registry.buildAll()
	if err != nil {
		return err
	}
	d.snap.Store(&snapshot{pipelines: pipes})
	return nil
}

// Dispatch routes env through its registered pipeline and returns the
// outcome unchanged. A type with no registration yields a failed Outcome
// naming the type and a nil error.
func (d *Dispatcher) Dispatch(ctx context.Context, env pipeline.Envelope) (pipeline.Outcome, error) {
	start := time.Now()
	typeKey := env.TypeKey()

	pipe, ok := d.snap.Load().pipelines[typeKey]
	if !ok {
		d.logger.Warn("no handler registered",
			observe.String("request_type", typeKey),
			observe.String("correlation_id", env.CorrelationID()),
		)
		out := pipeline.FailureWithDiagnostic(
			"dispatch: no pipeline in snapshot for "+typeKey,
			"no handler registered for request type "+typeKey,
		)
		d.emit(ctx, env, start, observe.StatusNotFound)
		return out, nil
	}

	out, err := pipe(ctx, env)
	d.emit(ctx, env, start, status(out, err))
	return out, err
}

// Send dispatches req and narrows the outcome to Result[T].
//
// Failure-shaped outcomes produced by interceptors or by a missing
// registration are rebuilt as failed Result[T] values, so callers always
// receive their own result type. A successful outcome of the wrong type is
// a wiring fault.
func Send[P, T any](ctx context.Context, d *Dispatcher, req pipeline.Request[P]) (pipeline.Result[T], error) {
	out, err := d.Dispatch(ctx, req)
	if err != nil {
		return pipeline.Result[T]{}, err
	}
	return narrow[T](out)
}

func narrow[T any](out pipeline.Outcome) (pipeline.Result[T], error) {
	if res, ok := out.(pipeline.Result[T]); ok {
		return res, nil
	}
	if out == nil {
		return pipeline.Result[T]{}, fmt.Errorf("%w: nil outcome", ErrOutcomeMismatch)
	}
	if !out.IsSuccess() {
		res := pipeline.Fail[T](out.Errors()...)
		if diag := out.Diagnostic(); diag != "" {
			res = res.WithDiagnostic(diag)
		}
		return res, nil
	}
	return pipeline.Result[T]{}, fmt.Errorf("%w: %T", ErrOutcomeMismatch, out)
}

func status(out pipeline.Outcome, err error) string {
	switch {
	case err != nil:
		return observe.StatusFault
	case out == nil || !out.IsSuccess():
		return observe.StatusFailure
	default:
		return observe.StatusSuccess
	}
}

func (d *Dispatcher) emit(ctx context.Context, env pipeline.Envelope, start time.Time, status string) {
	d.sink.Emit(ctx, observe.Dispatch{
		TypeKey:       env.TypeKey(),
		CorrelationID: env.CorrelationID(),
		Duration:      time.Since(start),
		Status:        status,
	})
}
