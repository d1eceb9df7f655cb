package observe

import "errors"

// Sentinels reported by Config.Validate.
var (
	// ErrMissingServiceName reports a Config with no service name.
	ErrMissingServiceName = errors.New("observe: missing service name")

	// ErrInvalidSamplePct reports a sample fraction outside
	// [MinSamplePct, MaxSamplePct].
	ErrInvalidSamplePct = errors.New("observe: sample pct out of range")

	// ErrInvalidTracingExporter reports an exporter name not in
	// ValidTracingExporters.
	ErrInvalidTracingExporter = errors.New("observe: unknown tracing exporter")

	// ErrInvalidMetricsExporter reports an exporter name not in
	// ValidMetricsExporters.
	ErrInvalidMetricsExporter = errors.New("observe: unknown metrics exporter")

	// ErrInvalidLogLevel reports a level name not in ValidLogLevels.
	ErrInvalidLogLevel = errors.New("observe: unknown log level")
)

// Sentinels reported by the instrument constructors.
var (
	// ErrNilObserver reports a nil Observer dependency.
	ErrNilObserver = errors.New("observe: nil observer")

	// ErrNilMeter reports a nil meter dependency.
	ErrNilMeter = errors.New("observe: nil meter")
)

// Bounds for TracingConfig.SamplePct.
const (
	MinSamplePct = 0.0
	MaxSamplePct = 1.0
)

// Names Config.Validate accepts per subsystem. The empty string selects
// the subsystem default.
var (
	ValidTracingExporters = []string{"otlp", "jaeger", "stdout", "none", ""}
	ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}
	ValidLogLevels        = []string{"debug", "info", "warn", "error", ""}
)
