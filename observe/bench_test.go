package observe

import (
	"context"
	"io"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonwraymond/relay/pipeline"
)

func discardLogger(level zapcore.Level) Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{MessageKey: "msg", LevelKey: "level"}),
		zapcore.AddSync(io.Discard),
		level,
	)
	return WrapZap(zap.New(core))
}

// BenchmarkLogger_Info measures logging throughput.
func BenchmarkLogger_Info(b *testing.B) {
	logger := discardLogger(zapcore.InfoLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", Int("iteration", i))
	}
}

// BenchmarkLogger_Info_MultipleFields measures logging with multiple fields.
func BenchmarkLogger_Info_MultipleFields(b *testing.B) {
	logger := discardLogger(zapcore.InfoLevel)
	fields := []Field{
		String("field1", "value1"),
		Int("field2", 42),
		Bool("field3", true),
		Float64("field4", 3.14),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", fields...)
	}
}

// BenchmarkLogger_With_ThenLog measures the scoped-logger pattern.
func BenchmarkLogger_With_ThenLog(b *testing.B) {
	logger := discardLogger(zapcore.InfoLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scoped := logger.With(String("request_type", "orders.GetOrder"))
		scoped.Info("dispatch succeeded", Int("iteration", i))
	}
}

// BenchmarkLogger_LevelFiltering measures overhead of filtered-out levels.
func BenchmarkLogger_LevelFiltering(b *testing.B) {
	logger := discardLogger(zapcore.ErrorLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("filtered debug")
		logger.Info("filtered info")
		logger.Warn("filtered warn")
	}
}

// BenchmarkRequestMeta_SpanName measures span name generation.
func BenchmarkRequestMeta_SpanName(b *testing.B) {
	meta := RequestMeta{TypeKey: "github.com/acme/shop/orders.GetOrder"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = meta.SpanName()
	}
}

// BenchmarkInterceptor_Intercept measures full observation overhead per
// dispatch with noop tracer and discard logger.
func BenchmarkInterceptor_Intercept(b *testing.B) {
	i := NewInterceptor(NewNoopTracer(), discardLogger(zapcore.InfoLevel))
	env := staticEnvelope{id: "bench", key: "orders.GetOrder"}
	out := pipeline.Ok("done")
	next := func(ctx context.Context) (pipeline.Outcome, error) { return out, nil }
	ctx := context.Background()

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_, _ = i.Intercept(ctx, env, next)
	}
}

// BenchmarkMultiSink_Emit measures event fan-out cost.
func BenchmarkMultiSink_Emit(b *testing.B) {
	sink := MultiSink{NopSink{}, NopSink{}}
	ctx := context.Background()
	ev := CacheLookup{TypeKey: "orders.GetOrder", Key: "cache:orders.GetOrder:abc", Hit: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink.Emit(ctx, ev)
	}
}
