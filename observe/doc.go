// Package observe provides observability primitives for request dispatch.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. It provides a zap-backed structured Logger, an
// OpenTelemetry Observer with pluggable exporters, typed pipeline events
// with pluggable sinks, and a tracing interceptor.
package observe
