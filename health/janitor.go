package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/relay/cache"
)

const defaultMaxSweepAge = 5 * time.Minute

// SweepReporter reports when a background sweeper last completed a
// pass. *cache.Janitor satisfies it.
type SweepReporter interface {
	// LastSweep returns the completion time of the most recent sweep,
	// or the zero time when no sweep has completed yet.
	LastSweep() time.Time
}

var _ SweepReporter = (*cache.Janitor)(nil)

// JanitorCheckerConfig sets freshness thresholds for sweep recency.
type JanitorCheckerConfig struct {
	// MaxSweepAge marks the janitor unhealthy when the last completed
	// sweep is older than this. Zero selects the default (5 minutes).
	MaxSweepAge time.Duration

	// WarnSweepAge marks the janitor degraded when the last completed
	// sweep is older than this. Zero, or a value above MaxSweepAge,
	// selects half of MaxSweepAge.
	WarnSweepAge time.Duration
}

// JanitorChecker reports whether the cache janitor is sweeping on
// schedule. A janitor that has not completed any sweep yet reports
// degraded rather than unhealthy, so a freshly started process is not
// flagged as broken.
type JanitorChecker struct {
	janitor SweepReporter
	config  JanitorCheckerConfig
}

var _ Checker = (*JanitorChecker)(nil)

// NewJanitorChecker creates a checker for the given janitor.
func NewJanitorChecker(janitor SweepReporter, config JanitorCheckerConfig) (*JanitorChecker, error) {
	if janitor == nil {
		return nil, ErrNilJanitor
	}
	if config.MaxSweepAge <= 0 {
		config.MaxSweepAge = defaultMaxSweepAge
	}
	if config.WarnSweepAge <= 0 || config.WarnSweepAge > config.MaxSweepAge {
		config.WarnSweepAge = config.MaxSweepAge / 2
	}
	return &JanitorChecker{janitor: janitor, config: config}, nil
}

// Name identifies the component being checked.
func (c *JanitorChecker) Name() string {
	return "cache-janitor"
}

// Check reports how recently the janitor completed a sweep.
func (c *JanitorChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("check cancelled", ctx.Err())
	default:
	}

	last := c.janitor.LastSweep()
	if last.IsZero() {
		return Degraded("no sweep completed yet").WithDetails(map[string]any{
			"max_sweep_age": c.config.MaxSweepAge.String(),
		})
	}

	age := time.Since(last)
	details := map[string]any{
		"last_sweep":    last.Format(time.RFC3339),
		"sweep_age":     age.Round(time.Millisecond).String(),
		"max_sweep_age": c.config.MaxSweepAge.String(),
	}
	message := fmt.Sprintf("last sweep %s ago", age.Round(time.Second))

	switch {
	case age > c.config.MaxSweepAge:
		return Unhealthy(message, ErrCheckFailed).WithDetails(details)
	case age > c.config.WarnSweepAge:
		return Degraded(message).WithDetails(details)
	default:
		return Healthy(message).WithDetails(details)
	}
}
