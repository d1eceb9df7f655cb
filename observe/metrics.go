package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics is the OpenTelemetry instrument bundle for dispatch pipelines.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: record methods must return quickly.
// - Errors: record methods must not panic.
type Metrics struct {
	dispatchTotal  metric.Int64Counter
	dispatchFaults metric.Int64Counter
	dispatchDurMs  metric.Float64Histogram
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	cacheWrites    metric.Int64Counter
	cacheEvictions metric.Int64Counter
	retryAttempts  metric.Int64Counter
	retryDelayMs   metric.Float64Histogram
	retryExhausted metric.Int64Counter
}

// NewMetrics creates the instrument bundle on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	dispatchTotal, err := meter.Int64Counter(
		"relay.dispatch.total",
		metric.WithDescription("Total number of dispatched requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	dispatchFaults, err := meter.Int64Counter(
		"relay.dispatch.faults",
		metric.WithDescription("Total number of dispatches ending in a fault"),
		metric.WithUnit("{fault}"),
	)
	if err != nil {
		return nil, err
	}

	dispatchDurMs, err := meter.Float64Histogram(
		"relay.dispatch.duration_ms",
		metric.WithDescription("Dispatch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"relay.cache.hits",
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"relay.cache.misses",
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheWrites, err := meter.Int64Counter(
		"relay.cache.writes",
		metric.WithDescription("Total number of cached results stored"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	cacheEvictions, err := meter.Int64Counter(
		"relay.cache.evictions",
		metric.WithDescription("Total number of evicted cache entries"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	retryAttempts, err := meter.Int64Counter(
		"relay.retry.attempts",
		metric.WithDescription("Total number of retry attempts scheduled"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	retryDelayMs, err := meter.Float64Histogram(
		"relay.retry.delay_ms",
		metric.WithDescription("Chosen backoff delay in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	retryExhausted, err := meter.Int64Counter(
		"relay.retry.exhausted",
		metric.WithDescription("Total number of operations that exhausted their retry budget"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		dispatchTotal:  dispatchTotal,
		dispatchFaults: dispatchFaults,
		dispatchDurMs:  dispatchDurMs,
		cacheHits:      cacheHits,
		cacheMisses:    cacheMisses,
		cacheWrites:    cacheWrites,
		cacheEvictions: cacheEvictions,
		retryAttempts:  retryAttempts,
		retryDelayMs:   retryDelayMs,
		retryExhausted: retryExhausted,
	}, nil
}

// RecordDispatch records one completed dispatch.
func (m *Metrics) RecordDispatch(ctx context.Context, typeKey, status string, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("relay.request_type", typeKey),
		attribute.String("relay.status", status),
	)

	m.dispatchTotal.Add(ctx, 1, opt)
	if status == StatusFault {
		m.dispatchFaults.Add(ctx, 1, opt)
	}
	m.dispatchDurMs.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordCacheLookup records one cache lookup.
func (m *Metrics) RecordCacheLookup(ctx context.Context, typeKey string, hit bool) {
	opt := metric.WithAttributes(attribute.String("relay.request_type", typeKey))
	if hit {
		m.cacheHits.Add(ctx, 1, opt)
	} else {
		m.cacheMisses.Add(ctx, 1, opt)
	}
}

// RecordCacheWrite records one stored result.
func (m *Metrics) RecordCacheWrite(ctx context.Context, typeKey string) {
	m.cacheWrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("relay.request_type", typeKey),
	))
}

// RecordCacheEviction records evicted entries with their reason.
func (m *Metrics) RecordCacheEviction(ctx context.Context, reason string, count int) {
	m.cacheEvictions.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("relay.eviction_reason", reason),
	))
}

// RecordRetryAttempt records one scheduled retry with its chosen delay.
func (m *Metrics) RecordRetryAttempt(ctx context.Context, scope, cause string, delay time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("relay.retry_scope", scope),
		attribute.String("relay.retry_cause", cause),
	)
	m.retryAttempts.Add(ctx, 1, opt)
	m.retryDelayMs.Record(ctx, float64(delay.Milliseconds()), opt)
}

// RecordRetryExhausted records one operation that ran out of attempts.
func (m *Metrics) RecordRetryExhausted(ctx context.Context, scope, cause string) {
	m.retryExhausted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("relay.retry_scope", scope),
		attribute.String("relay.retry_cause", cause),
	))
}
