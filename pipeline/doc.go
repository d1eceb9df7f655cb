// Package pipeline composes ordered interceptor chains around terminal
// handlers.
//
// It provides the immutable Request and Result envelopes, the Interceptor
// contract, and Build, which folds a sorted binding list and a handler
// into a single callable safe for concurrent reuse.
package pipeline
