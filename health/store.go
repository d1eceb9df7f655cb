package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/relay/cache"
)

// StoreCheckerConfig sets occupancy thresholds for a cache store.
type StoreCheckerConfig struct {
	// WarnEntries marks the store degraded once it holds at least this
	// many entries. Zero disables the warning threshold.
	WarnEntries int

	// MaxEntries marks the store unhealthy once it holds at least this
	// many entries. Zero disables the limit.
	MaxEntries int
}

// StoreChecker reports cache store occupancy against the configured
// thresholds. With no thresholds set it always reports healthy and the
// entry count rides along in the details.
type StoreChecker struct {
	store  cache.Store
	config StoreCheckerConfig
}

var _ Checker = (*StoreChecker)(nil)

// NewStoreChecker creates a checker for the given store. A warning
// threshold above the limit is clamped down to it.
func NewStoreChecker(store cache.Store, config StoreCheckerConfig) (*StoreChecker, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if config.MaxEntries > 0 && config.WarnEntries > config.MaxEntries {
		config.WarnEntries = config.MaxEntries
	}
	return &StoreChecker{store: store, config: config}, nil
}

// Name identifies the component being checked.
func (c *StoreChecker) Name() string {
	return "cache-store"
}

// Check reports the store's current occupancy.
func (c *StoreChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("check cancelled", ctx.Err())
	default:
	}

	entries := c.store.Len()
	details := map[string]any{
		"entries":      entries,
		"warn_entries": c.config.WarnEntries,
		"max_entries":  c.config.MaxEntries,
	}

	switch {
	case c.config.MaxEntries > 0 && entries >= c.config.MaxEntries:
		return Unhealthy(
			fmt.Sprintf("store at capacity: %d entries", entries),
			ErrCheckFailed,
		).WithDetails(details)
	case c.config.WarnEntries > 0 && entries >= c.config.WarnEntries:
		return Degraded(fmt.Sprintf("store filling up: %d entries", entries)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("%d entries cached", entries)).WithDetails(details)
	}
}
