// Package retry provides a retrying executor with exponential backoff for
// dispatched requests.
//
// It distinguishes failed results from faults: a failed result is retried
// only when the policy's failure predicate matches its messages, while a
// fault is retried unless the fault predicate rejects it. Delays double per
// attempt under exponential backoff, are clamped to the policy maximum, and
// then receive bounded uniform jitter.
package retry
