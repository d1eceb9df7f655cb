package retry

import (
	"math/rand/v2"
	"time"
)

// Backoff computes the delay sequence between attempts.
//
// Delay is a pure function of the policy, the attempt number, and the
// random source, so schedules are reproducible under an injected source.
type Backoff struct {
	policy Policy
	rand   func(n int64) int64
}

// NewBackoff creates a scheduler for policy using the shared PRNG.
func NewBackoff(policy Policy) *Backoff {
	return newBackoff(policy, rand.Int64N)
}

func newBackoff(policy Policy, rnd func(n int64) int64) *Backoff {
	if rnd == nil {
		rnd = rand.Int64N
	}
	return &Backoff{policy: policy.withDefaults(), rand: rnd}
}

// Delay returns the pause inserted after attempt (1-based) before the next
// attempt begins.
//
// The raw delay doubles per completed attempt under exponential backoff and
// is clamped to MaxDelay before jitter is added, so the effective ceiling
// is MaxDelay + MaxJitter.
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := b.policy.BaseDelay
	if b.policy.UseExponentialBackoff {
		for i := 1; i < attempt && delay < b.policy.MaxDelay; i++ {
			delay *= 2
		}
	}
	if delay > b.policy.MaxDelay {
		delay = b.policy.MaxDelay
	}

	if b.policy.MaxJitter > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(b.rand(int64(b.policy.MaxJitter) + 1))
	}

	return delay
}
