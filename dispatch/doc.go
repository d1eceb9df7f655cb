// Package dispatch routes requests to per-type interceptor pipelines.
//
// A Registry accumulates typed handler registrations with their interceptor
// bindings. A Dispatcher materializes the registrations into an immutable
// snapshot of built pipelines, swapped atomically on reload, and Send
// resolves a request by its type key and returns the pipeline's typed
// Result unchanged. Dispatching a type with no registration yields a failed
// Result naming the type, never a fault.
package dispatch
