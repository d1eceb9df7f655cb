package cache

import "time"

// Config holds store-level expiration defaults.
type Config struct {
	// DefaultAbsoluteTTL is the absolute expiration applied when Set receives
	// no override. Zero selects the package default (5 minutes); negative
	// disables absolute expiration by default.
	DefaultAbsoluteTTL time.Duration

	// MaxAbsoluteTTL is the maximum allowed absolute TTL. Per-entry overrides
	// are clamped to this. Zero selects the package default (1 hour);
	// negative disables clamping.
	MaxAbsoluteTTL time.Duration

	// DefaultSlidingTTL is the sliding window applied when Set receives no
	// override. Zero or negative disables sliding expiration by default.
	DefaultSlidingTTL time.Duration

	// Clock supplies the current time. Nil selects the system clock.
	Clock Clock
}

// DefaultConfig returns the default store configuration.
// DefaultAbsoluteTTL: 5 minutes, MaxAbsoluteTTL: 1 hour, sliding disabled.
func DefaultConfig() Config {
	return Config{
		DefaultAbsoluteTTL: 5 * time.Minute,
		MaxAbsoluteTTL:     1 * time.Hour,
		Clock:              SystemClock(),
	}
}

func (c Config) withDefaults() Config {
	if c.DefaultAbsoluteTTL == 0 {
		c.DefaultAbsoluteTTL = 5 * time.Minute
	}
	if c.MaxAbsoluteTTL == 0 {
		c.MaxAbsoluteTTL = 1 * time.Hour
	}
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	return c
}

// SetOption overrides expiration for a single Set.
type SetOption func(*setOptions)

type setOptions struct {
	absolute    time.Duration
	absoluteSet bool
	sliding     time.Duration
	slidingSet  bool
}

// WithAbsoluteTTL overrides the absolute expiration for one entry.
// Zero or negative disables absolute expiration for the entry.
func WithAbsoluteTTL(d time.Duration) SetOption {
	return func(o *setOptions) { o.absolute, o.absoluteSet = d, true }
}

// WithSlidingTTL overrides the sliding window for one entry.
// Zero or negative disables sliding expiration for the entry.
func WithSlidingTTL(d time.Duration) SetOption {
	return func(o *setOptions) { o.sliding, o.slidingSet = d, true }
}

// resolveTTLs applies defaults and clamping to per-Set overrides. A returned
// zero means the corresponding expiration is disabled.
func (c Config) resolveTTLs(opts []SetOption) (absolute, sliding time.Duration) {
	var o setOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	absolute = c.DefaultAbsoluteTTL
	if o.absoluteSet {
		absolute = o.absolute
	}
	if absolute < 0 {
		absolute = 0
	}
	if absolute > 0 && c.MaxAbsoluteTTL > 0 && absolute > c.MaxAbsoluteTTL {
		absolute = c.MaxAbsoluteTTL
	}

	sliding = c.DefaultSlidingTTL
	if o.slidingSet {
		sliding = o.sliding
	}
	if sliding < 0 {
		sliding = 0
	}

	return absolute, sliding
}
