package retry

import (
	"strings"
	"time"
)

// Policy configures retry behavior.
//
// A Policy is read-only after configuration: one value may serve unlimited
// concurrent executions.
type Policy struct {
	// MaxRetryCount is the number of retries after the initial attempt.
	// The total attempt budget is MaxRetryCount + 1. Negative counts as
	// zero.
	MaxRetryCount int

	// BaseDelay is the delay before the first retry.
	// Default: 100ms
	BaseDelay time.Duration

	// MaxDelay caps the computed delay before jitter is added.
	// Default: 30s
	MaxDelay time.Duration

	// MaxJitter bounds the uniform random jitter added to each delay.
	// Zero disables jitter.
	MaxJitter time.Duration

	// UseExponentialBackoff doubles the delay each attempt. When false
	// every delay is BaseDelay.
	UseExponentialBackoff bool

	// PerAttemptTimeout bounds each attempt independently; an attempt
	// exceeding it faults with context.DeadlineExceeded and is classified
	// through RetryOnFault. Zero disables the bound.
	PerAttemptTimeout time.Duration

	// RetryOnFault decides whether a fault triggers a retry.
	// Default: all faults trigger retry.
	RetryOnFault func(err error) bool

	// RetryOnFailure decides whether a failed result triggers a retry,
	// given its user-facing error messages.
	// Default: failed results are returned unchanged, never retried.
	RetryOnFailure func(messages []string) bool
}

// DefaultPolicy returns a policy retrying faults up to three times with
// exponential backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetryCount:         3,
		BaseDelay:             100 * time.Millisecond,
		MaxDelay:              30 * time.Second,
		MaxJitter:             100 * time.Millisecond,
		UseExponentialBackoff: true,
	}
}

// MaxAttempts returns the total attempt budget including the initial
// attempt.
func (p Policy) MaxAttempts() int {
	if p.MaxRetryCount < 0 {
		return 1
	}
	return p.MaxRetryCount + 1
}

func (p Policy) withDefaults() Policy {
	if p.MaxRetryCount < 0 {
		p.MaxRetryCount = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 100 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.MaxJitter < 0 {
		p.MaxJitter = 0
	}
	if p.PerAttemptTimeout < 0 {
		p.PerAttemptTimeout = 0
	}
	return p
}

// retryFault reports whether a fault should be retried.
func (p Policy) retryFault(err error) bool {
	if p.RetryOnFault == nil {
		return true
	}
	return p.RetryOnFault(err)
}

// retryFailure reports whether a failed result should be retried.
func (p Policy) retryFailure(messages []string) bool {
	if p.RetryOnFailure == nil {
		return false
	}
	return p.RetryOnFailure(messages)
}

// FailureContaining returns a failure predicate matching results whose
// user-facing messages contain any of the given substrings.
// Matching is case-insensitive.
func FailureContaining(substrings ...string) func(messages []string) bool {
	lowered := make([]string, len(substrings))
	for i, s := range substrings {
		lowered[i] = strings.ToLower(s)
	}
	return func(messages []string) bool {
		for _, msg := range messages {
			m := strings.ToLower(msg)
			for _, sub := range lowered {
				if strings.Contains(m, sub) {
					return true
				}
			}
		}
		return false
	}
}
