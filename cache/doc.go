// Package cache provides TTL and sliding-expiration caching for dispatched
// request results.
//
// It provides deterministic SHA-256 key derivation from request payloads, a
// concurrent Store with eviction hooks, a periodic cleanup Janitor, and a
// pipeline Interceptor that short-circuits on hits.
package cache
