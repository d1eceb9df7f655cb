package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/relay/observe"
)

// JanitorConfig configures the background cleanup task.
type JanitorConfig struct {
	// Interval between sweep passes. Zero selects the default (1 minute).
	Interval time.Duration

	// MaxAge prunes entries cached longer ago than this, regardless of
	// expiration state. Zero or negative disables age pruning.
	MaxAge time.Duration

	// Logger records sweep results and failures. Nil disables logging.
	Logger observe.Logger

	// Sink receives one aggregated CacheEviction event per sweep pass that
	// removed entries. Nil discards them.
	Sink observe.Sink
}

// Janitor periodically sweeps a Store. A failing sweep is logged and the
// next cycle proceeds; cancellation stops an in-flight sweep early.
type Janitor struct {
	store Store
	cfg   JanitorConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	lastSweep atomic.Int64 // unix nanoseconds of last completed pass
}

// NewJanitor creates a janitor for the given store.
// Zero JanitorConfig fields fall back to defaults.
func NewJanitor(store Store, cfg JanitorConfig) (*Janitor, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Sink == nil {
		cfg.Sink = observe.NopSink{}
	}
	return &Janitor{store: store, cfg: cfg}, nil
}

// Start launches the sweep loop and returns immediately. The loop runs
// until ctx is cancelled or Stop is called. Starting a running janitor is a
// no-op.
func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})
	go j.run(ctx, j.done)
}

// Stop cancels the sweep loop and waits for any in-flight sweep to finish.
// Stopping a stopped janitor is a no-op.
func (j *Janitor) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (j *Janitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass immediately: expired entries always, aged
// entries when MaxAge is configured. Each pass that removed entries is
// reported to the sink as one aggregated event; sliding-stale removals
// count as expired.
func (j *Janitor) Sweep(ctx context.Context) {
	expired, err := j.store.SweepExpired(ctx)
	if err != nil {
		j.cfg.Logger.Warn("cache sweep failed", observe.Err(err))
	} else if expired > 0 {
		j.cfg.Logger.Debug("cache sweep removed expired entries", observe.Int("removed", expired))
		j.cfg.Sink.Emit(ctx, observe.CacheEviction{Reason: string(ReasonExpired), Count: expired})
	}

	if j.cfg.MaxAge > 0 {
		aged, err := j.store.SweepOlderThan(ctx, j.cfg.MaxAge)
		if err != nil {
			j.cfg.Logger.Warn("cache age sweep failed", observe.Err(err))
		} else if aged > 0 {
			j.cfg.Logger.Debug("cache sweep removed aged entries", observe.Int("removed", aged))
			j.cfg.Sink.Emit(ctx, observe.CacheEviction{Reason: string(ReasonAged), Count: aged})
		}
	}

	j.lastSweep.Store(time.Now().UnixNano())
}

// LastSweep reports when the most recent sweep pass completed, or the zero
// time when no sweep has run yet.
func (j *Janitor) LastSweep() time.Time {
	n := j.lastSweep.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// ObserveEvictions registers an eviction hook on store that reports each
// removal to sink as a CacheEviction event. A janitor configured with its
// own sink already reports sweep removals in aggregate; wire one or the
// other to keep counts single.
func ObserveEvictions(store Store, sink observe.Sink) {
	if store == nil || sink == nil {
		return
	}
	store.OnEviction(func(meta Metadata, reason EvictionReason) {
		sink.Emit(context.Background(), observe.CacheEviction{Reason: string(reason), Count: 1})
	})
}
