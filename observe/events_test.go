package observe

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

// captureSink records every emitted event for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Emit(ctx context.Context, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *captureSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestEventKinds(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{CacheLookup{}, "cache.lookup"},
		{CacheWrite{}, "cache.write"},
		{CacheEviction{}, "cache.eviction"},
		{RetryAttempt{}, "retry.attempt"},
		{RetryExhausted{}, "retry.exhausted"},
		{Dispatch{}, "dispatch"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ev.Kind(); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNopSink(t *testing.T) {
	var s NopSink
	// Must accept any event without effect.
	s.Emit(context.Background(), Dispatch{TypeKey: "x"})
	s.Emit(context.Background(), nil)
}

func TestMultiSink_FansOut(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}
	multi := MultiSink{first, nil, second}

	multi.Emit(context.Background(), CacheLookup{TypeKey: "orders.Get", Hit: true})

	if len(first.all()) != 1 {
		t.Errorf("first sink events = %d, want 1", len(first.all()))
	}
	if len(second.all()) != 1 {
		t.Errorf("second sink events = %d, want 1", len(second.all()))
	}
}

func TestLogSink_RoutesEvents(t *testing.T) {
	logger, logs := observedLogger(zapcore.DebugLevel)
	sink := NewLogSink(logger)
	ctx := context.Background()

	sink.Emit(ctx, CacheLookup{TypeKey: "orders.Get", Key: "cache:orders.Get:abc", Hit: true})
	sink.Emit(ctx, CacheEviction{Reason: "expired", Count: 3})
	sink.Emit(ctx, RetryAttempt{Scope: "orders", Attempt: 1, Delay: 100 * time.Millisecond, Cause: "fault"})
	sink.Emit(ctx, RetryExhausted{Scope: "orders", Attempts: 4, Cause: "fault"})
	sink.Emit(ctx, Dispatch{TypeKey: "orders.Get", CorrelationID: "id-1", Duration: time.Millisecond, Status: StatusSuccess})

	entries := logs.All()
	if len(entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(entries))
	}

	if entries[0].Message != "cache lookup" {
		t.Errorf("entries[0].Message = %q, want cache lookup", entries[0].Message)
	}
	if got := entries[1].ContextMap()["count"]; got != int64(3) {
		t.Errorf("eviction count field = %v, want 3", got)
	}
	if entries[3].Level != zapcore.WarnLevel {
		t.Errorf("retry.exhausted level = %v, want warn", entries[3].Level)
	}
	if got := entries[4].ContextMap()["status"]; got != StatusSuccess {
		t.Errorf("dispatch status field = %v, want %q", got, StatusSuccess)
	}
}

func TestLogSink_NilLogger(t *testing.T) {
	sink := NewLogSink(nil)
	// Must not panic.
	sink.Emit(context.Background(), Dispatch{TypeKey: "x"})
}

func TestMeterSink_RecordsWithoutPanic(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "test-service",
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	sink := NewMeterSink(metrics)
	ctx := context.Background()

	sink.Emit(ctx, CacheLookup{TypeKey: "orders.Get", Hit: false})
	sink.Emit(ctx, CacheWrite{TypeKey: "orders.Get", Key: "k"})
	sink.Emit(ctx, CacheEviction{Reason: "invalidated", Count: 2})
	sink.Emit(ctx, RetryAttempt{Scope: "orders", Attempt: 2, Delay: time.Millisecond, Cause: "failure"})
	sink.Emit(ctx, RetryExhausted{Scope: "orders", Attempts: 3, Cause: "failure"})
	sink.Emit(ctx, Dispatch{TypeKey: "orders.Get", Duration: time.Millisecond, Status: StatusFault})
}

func TestMeterSink_NilMetrics(t *testing.T) {
	sink := NewMeterSink(nil)
	// Must not panic.
	sink.Emit(context.Background(), Dispatch{TypeKey: "x"})
}

func TestNewMetrics_NilMeter(t *testing.T) {
	if _, err := NewMetrics(nil); err != ErrNilMeter {
		t.Errorf("NewMetrics(nil) error = %v, want ErrNilMeter", err)
	}
}
