package retry

import (
	"testing"
	"time"
)

// fixedRand returns a source that always yields v.
func fixedRand(v int64) func(n int64) int64 {
	return func(n int64) int64 { return v }
}

// maxRand returns the largest value the source may yield.
func maxRand(n int64) int64 { return n - 1 }

func TestBackoff_ExponentialSequence(t *testing.T) {
	b := newBackoff(Policy{
		MaxRetryCount:         9,
		BaseDelay:             100 * time.Millisecond,
		MaxDelay:              5 * time.Second,
		UseExponentialBackoff: true,
	}, nil)

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		5 * time.Second, // clamped
		5 * time.Second,
	}
	for i, w := range want {
		attempt := i + 1
		if got := b.Delay(attempt); got != w {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestBackoff_NonDecreasing(t *testing.T) {
	b := newBackoff(Policy{
		BaseDelay:             100 * time.Millisecond,
		MaxDelay:              5 * time.Second,
		UseExponentialBackoff: true,
	}, nil)

	prev := time.Duration(0)
	for attempt := 1; attempt <= 20; attempt++ {
		d := b.Delay(attempt)
		if d < prev {
			t.Fatalf("Delay(%d) = %v, decreased from %v", attempt, d, prev)
		}
		prev = d
	}
}

func TestBackoff_ConstantWithoutExponential(t *testing.T) {
	b := newBackoff(Policy{
		BaseDelay: 250 * time.Millisecond,
		MaxDelay:  5 * time.Second,
	}, nil)

	for attempt := 1; attempt <= 5; attempt++ {
		if got := b.Delay(attempt); got != 250*time.Millisecond {
			t.Errorf("Delay(%d) = %v, want 250ms", attempt, got)
		}
	}
}

func TestBackoff_ClampsBeforeJitter(t *testing.T) {
	b := newBackoff(Policy{
		BaseDelay:             time.Second,
		MaxDelay:              2 * time.Second,
		MaxJitter:             500 * time.Millisecond,
		UseExponentialBackoff: true,
	}, maxRand)

	// Attempt 3's raw delay is 4s; the clamp to 2s happens before jitter,
	// so the maximum observable delay is 2.5s rather than capped 2s.
	if got := b.Delay(3); got != 2500*time.Millisecond {
		t.Errorf("Delay(3) = %v, want 2.5s", got)
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	base := 100 * time.Millisecond
	jitter := 50 * time.Millisecond
	b := NewBackoff(Policy{
		BaseDelay: base,
		MaxDelay:  time.Second,
		MaxJitter: jitter,
	})

	for i := 0; i < 200; i++ {
		d := b.Delay(1)
		if d < base || d > base+jitter {
			t.Fatalf("Delay(1) = %v, want within [%v, %v]", d, base, base+jitter)
		}
	}
}

func TestBackoff_JitterRangeIsInclusive(t *testing.T) {
	var sawN int64
	b := newBackoff(Policy{
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  time.Second,
		MaxJitter: 50 * time.Millisecond,
	}, func(n int64) int64 {
		sawN = n
		return n - 1
	})

	got := b.Delay(1)

	// The source is asked for [0, MaxJitter+1) so MaxJitter itself can be
	// drawn.
	if want := int64(50*time.Millisecond) + 1; sawN != want {
		t.Errorf("rand bound = %d, want %d", sawN, want)
	}
	if want := 150 * time.Millisecond; got != want {
		t.Errorf("Delay(1) = %v, want %v", got, want)
	}
}

func TestBackoff_DeterministicWithInjectedSource(t *testing.T) {
	policy := Policy{
		BaseDelay:             100 * time.Millisecond,
		MaxDelay:              5 * time.Second,
		MaxJitter:             30 * time.Millisecond,
		UseExponentialBackoff: true,
	}
	b1 := newBackoff(policy, fixedRand(7))
	b2 := newBackoff(policy, fixedRand(7))

	for attempt := 1; attempt <= 10; attempt++ {
		if d1, d2 := b1.Delay(attempt), b2.Delay(attempt); d1 != d2 {
			t.Errorf("Delay(%d) diverged: %v vs %v", attempt, d1, d2)
		}
	}
}

func TestBackoff_AttemptFloor(t *testing.T) {
	b := newBackoff(Policy{
		BaseDelay:             100 * time.Millisecond,
		MaxDelay:              time.Second,
		UseExponentialBackoff: true,
	}, nil)

	if got, want := b.Delay(0), b.Delay(1); got != want {
		t.Errorf("Delay(0) = %v, want %v", got, want)
	}
	if got, want := b.Delay(-3), b.Delay(1); got != want {
		t.Errorf("Delay(-3) = %v, want %v", got, want)
	}
}
