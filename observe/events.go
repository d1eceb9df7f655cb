package observe

import (
	"context"
	"time"
)

// Dispatch outcome classifications used in events and metrics.
const (
	StatusSuccess  = "success"
	StatusFailure  = "failure"
	StatusFault    = "fault"
	StatusNotFound = "not_found"
)

// Event is a structured observability event emitted by pipeline components.
type Event interface {
	// Kind returns the stable event name.
	Kind() string
}

// CacheLookup reports one cache read.
type CacheLookup struct {
	TypeKey string
	Key     string
	Hit     bool
}

// Kind returns the stable event name.
func (CacheLookup) Kind() string { return "cache.lookup" }

// CacheWrite reports one stored result.
type CacheWrite struct {
	TypeKey     string
	Key         string
	AbsoluteTTL time.Duration
	SlidingTTL  time.Duration
}

// Kind returns the stable event name.
func (CacheWrite) Kind() string { return "cache.write" }

// CacheEviction reports entries physically removed from the store.
// Sweeps aggregate removals into one event; explicit invalidations and
// lazy expiry report Count 1.
type CacheEviction struct {
	Reason string
	Count  int
}

// Kind returns the stable event name.
func (CacheEviction) Kind() string { return "cache.eviction" }

// RetryAttempt reports one scheduled retry and its chosen delay.
type RetryAttempt struct {
	Scope   string
	Attempt int
	Delay   time.Duration
	Cause   string
}

// Kind returns the stable event name.
func (RetryAttempt) Kind() string { return "retry.attempt" }

// RetryExhausted reports an operation that ran out of attempts while its
// outcome was still retryable.
type RetryExhausted struct {
	Scope    string
	Attempts int
	Cause    string
}

// Kind returns the stable event name.
func (RetryExhausted) Kind() string { return "retry.exhausted" }

// Dispatch reports one completed dispatch.
type Dispatch struct {
	TypeKey       string
	CorrelationID string
	Duration      time.Duration
	Status        string
}

// Kind returns the stable event name.
func (Dispatch) Kind() string { return "dispatch" }

// Sink receives observability events from pipeline components.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Emit must return quickly and never block the caller.
// - Errors: Emit is best-effort and must not panic.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// NopSink discards all events.
type NopSink struct{}

// Emit discards the event.
func (NopSink) Emit(ctx context.Context, ev Event) {}

var _ Sink = NopSink{}

// LogSink writes events to a structured logger at debug/info levels.
type LogSink struct {
	logger Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger Logger) *LogSink {
	if logger == nil {
		logger = NopLogger()
	}
	return &LogSink{logger: logger}
}

// Emit writes the event as one structured log entry.
func (s *LogSink) Emit(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case CacheLookup:
		s.logger.Debug("cache lookup",
			String("event", e.Kind()),
			String("request_type", e.TypeKey),
			String("key", e.Key),
			Bool("hit", e.Hit),
		)
	case CacheWrite:
		s.logger.Debug("cache write",
			String("event", e.Kind()),
			String("request_type", e.TypeKey),
			String("key", e.Key),
			Duration("absolute_ttl", e.AbsoluteTTL),
			Duration("sliding_ttl", e.SlidingTTL),
		)
	case CacheEviction:
		s.logger.Debug("cache eviction",
			String("event", e.Kind()),
			String("reason", e.Reason),
			Int("count", e.Count),
		)
	case RetryAttempt:
		s.logger.Info("retry scheduled",
			String("event", e.Kind()),
			String("scope", e.Scope),
			Int("attempt", e.Attempt),
			Duration("delay", e.Delay),
			String("cause", e.Cause),
		)
	case RetryExhausted:
		s.logger.Warn("retry budget exhausted",
			String("event", e.Kind()),
			String("scope", e.Scope),
			Int("attempts", e.Attempts),
			String("cause", e.Cause),
		)
	case Dispatch:
		s.logger.Info("dispatch completed",
			String("event", e.Kind()),
			String("request_type", e.TypeKey),
			String("correlation_id", e.CorrelationID),
			Duration("duration", e.Duration),
			String("status", e.Status),
		)
	default:
		s.logger.Debug("event", String("event", ev.Kind()))
	}
}

var _ Sink = (*LogSink)(nil)

// MeterSink converts events into OpenTelemetry instruments.
type MeterSink struct {
	metrics *Metrics
}

// NewMeterSink creates a sink recording to the given instrument bundle.
func NewMeterSink(metrics *Metrics) *MeterSink {
	return &MeterSink{metrics: metrics}
}

// Emit records the event on the matching instruments.
func (s *MeterSink) Emit(ctx context.Context, ev Event) {
	if s.metrics == nil {
		return
	}
	switch e := ev.(type) {
	case CacheLookup:
		s.metrics.RecordCacheLookup(ctx, e.TypeKey, e.Hit)
	case CacheWrite:
		s.metrics.RecordCacheWrite(ctx, e.TypeKey)
	case CacheEviction:
		s.metrics.RecordCacheEviction(ctx, e.Reason, e.Count)
	case RetryAttempt:
		s.metrics.RecordRetryAttempt(ctx, e.Scope, e.Cause, e.Delay)
	case RetryExhausted:
		s.metrics.RecordRetryExhausted(ctx, e.Scope, e.Cause)
	case Dispatch:
		s.metrics.RecordDispatch(ctx, e.TypeKey, e.Status, e.Duration)
	}
}

var _ Sink = (*MeterSink)(nil)

// MultiSink fans events out to several sinks in order.
type MultiSink []Sink

// Emit forwards the event to every sink.
func (s MultiSink) Emit(ctx context.Context, ev Event) {
	for _, sink := range s {
		if sink != nil {
			sink.Emit(ctx, ev)
		}
	}
}

var _ Sink = MultiSink(nil)
