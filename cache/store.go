package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/jonwraymond/relay/pipeline"
)

// EvictionReason identifies why an entry left the store.
type EvictionReason string

// Eviction reasons reported to hooks.
const (
	ReasonInvalidated EvictionReason = "invalidated"
	ReasonExpired     EvictionReason = "expired"
	ReasonStale       EvictionReason = "stale"
	ReasonAged        EvictionReason = "aged"
	ReasonReplaced    EvictionReason = "replaced"
)

// Metadata is a point-in-time snapshot of a cached entry's bookkeeping.
type Metadata struct {
	Key               string
	TypeKey           string
	CachedAt          time.Time
	AbsoluteExpiresAt time.Time     // zero when absolute expiration is disabled
	SlidingWindow     time.Duration // zero when sliding expiration is disabled
	LastAccessedAt    time.Time
}

// EvictionHook observes physical removals. Hooks run synchronously on the
// evicting goroutine, after the entry is gone.
type EvictionHook func(meta Metadata, reason EvictionReason)

// Store is the interface for cached request results.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use; the last
//   Set for a key wins.
// - Context: sweeps and bulk invalidations stop early when the context is
//   cancelled.
// - Errors: internal failures surface as errors so callers can degrade to a
//   miss; a miss itself is not an error.
type Store interface {
	// TryGet retrieves a cached outcome. An absent, expired, or stale entry
	// is a miss. A hit refreshes LastAccessedAt.
	TryGet(ctx context.Context, key string) (pipeline.Outcome, Metadata, bool, error)

	// Set stores or overwrites an entry. Expiration falls back to the
	// store's configured defaults unless overridden by options.
	Set(ctx context.Context, key string, out pipeline.Outcome, typeKey string, opts ...SetOption) error

	// Invalidate removes one entry. Reports whether an entry was removed.
	Invalidate(ctx context.Context, key string) (bool, error)

	// InvalidateByRequestType removes every entry cached for one request
	// type and returns the count removed.
	InvalidateByRequestType(ctx context.Context, typeKey string) (int, error)

	// InvalidateAll removes every entry and returns the count removed.
	InvalidateAll(ctx context.Context) (int, error)

	// SweepOlderThan removes entries cached earlier than now-maxAge and
	// returns the count removed.
	SweepOlderThan(ctx context.Context, maxAge time.Duration) (int, error)

	// SweepExpired removes entries past their absolute expiration or with a
	// lapsed sliding window and returns the count removed.
	SweepExpired(ctx context.Context) (int, error)

	// OnEviction registers a hook invoked after each physical removal.
	OnEviction(hook EvictionHook)

	// Len reports the number of stored entries, including entries not yet
	// swept.
	Len() int
}

// MemoryStore is an in-memory Store on lock-free concurrent maps. Entry
// bookkeeping lives in records shared between the value map and a metadata
// index; a removal always drops both sides.
type MemoryStore struct {
	cfg    Config
	values *xsync.MapOf[string, *entry]
	meta   *xsync.MapOf[string, *record]

	hookMu sync.RWMutex
	hooks  []EvictionHook
}

type entry struct {
	outcome pipeline.Outcome
	rec     *record
}

// record carries an entry's bookkeeping. typeKey, cachedAt, expiresAt and
// window never mutate after creation; lastAccess only advances.
type record struct {
	typeKey    string
	cachedAt   time.Time
	expiresAt  time.Time     // zero = no absolute expiration
	window     time.Duration // 0 = no sliding expiration
	lastAccess atomic.Int64  // unix nanoseconds
}

// touch advances lastAccess to now, never backwards.
func (r *record) touch(now time.Time) {
	n := now.UnixNano()
	for {
		cur := r.lastAccess.Load()
		if n <= cur || r.lastAccess.CompareAndSwap(cur, n) {
			return
		}
	}
}

// lapsed reports whether the record is past its absolute expiration or its
// sliding window as of now.
func (r *record) lapsed(now time.Time) (EvictionReason, bool) {
	if !r.expiresAt.IsZero() && !now.Before(r.expiresAt) {
		return ReasonExpired, true
	}
	if r.window > 0 && now.Sub(time.Unix(0, r.lastAccess.Load())) > r.window {
		return ReasonStale, true
	}
	return "", false
}

// NewMemoryStore creates an in-memory store with the given configuration.
// Zero Config fields fall back to DefaultConfig values.
func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{
		cfg:    cfg.withDefaults(),
		values: xsync.NewMapOf[string, *entry](),
		meta:   xsync.NewMapOf[string, *record](),
	}
}

// TryGet retrieves a cached outcome. Expired and stale entries are removed
// lazily on read and reported as misses.
func (s *MemoryStore) TryGet(_ context.Context, key string) (pipeline.Outcome, Metadata, bool, error) {
	e, ok := s.values.Load(key)
	if !ok {
		return nil, Metadata{}, false, nil
	}

	now := s.cfg.Clock.Now()
	if reason, evict := e.rec.lapsed(now); evict {
		s.remove(key, e.rec, reason)
		return nil, Metadata{}, false, nil
	}

	e.rec.touch(now)
	return e.outcome, s.snapshot(key, e.rec), true, nil
}

// Set stores or overwrites the entry for key. A replaced entry is reported
// to eviction hooks with ReasonReplaced.
func (s *MemoryStore) Set(_ context.Context, key string, out pipeline.Outcome, typeKey string, opts ...SetOption) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if out == nil {
		return ErrNilOutcome
	}
	if typeKey == "" {
		return ErrMissingTypeKey
	}

	absolute, sliding := s.cfg.resolveTTLs(opts)
	now := s.cfg.Clock.Now()

	rec := &record{
		typeKey:  typeKey,
		cachedAt: now,
		window:   sliding,
	}
	if absolute > 0 {
		rec.expiresAt = now.Add(absolute)
	}
	rec.lastAccess.Store(now.UnixNano())

	prev, replaced := s.values.LoadAndStore(key, &entry{outcome: out, rec: rec})
	s.meta.Store(key, rec)

	if replaced {
		s.notify(s.snapshot(key, prev.rec), ReasonReplaced)
	}
	return nil
}

// Invalidate removes one entry. Idempotent - reports false on miss.
func (s *MemoryStore) Invalidate(_ context.Context, key string) (bool, error) {
	e, ok := s.values.Load(key)
	if !ok {
		return false, nil
	}
	return s.remove(key, e.rec, ReasonInvalidated), nil
}

// InvalidateByRequestType removes every entry whose request type matches
// typeKey.
func (s *MemoryStore) InvalidateByRequestType(ctx context.Context, typeKey string) (int, error) {
	count := 0
	var rangeErr error
	s.meta.Range(func(key string, rec *record) bool {
		if err := ctx.Err(); err != nil {
			rangeErr = err
			return false
		}
		if rec.typeKey == typeKey && s.remove(key, rec, ReasonInvalidated) {
			count++
		}
		return true
	})
	return count, rangeErr
}

// InvalidateAll removes every entry.
func (s *MemoryStore) InvalidateAll(ctx context.Context) (int, error) {
	count := 0
	var rangeErr error
	s.meta.Range(func(key string, rec *record) bool {
		if err := ctx.Err(); err != nil {
			rangeErr = err
			return false
		}
		if s.remove(key, rec, ReasonInvalidated) {
			count++
		}
		return true
	})
	return count, rangeErr
}

// SweepOlderThan removes entries created before now-maxAge regardless of
// expiration state.
func (s *MemoryStore) SweepOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, ErrInvalidMaxAge
	}

	cutoff := s.cfg.Clock.Now().Add(-maxAge)
	count := 0
	var rangeErr error
	s.meta.Range(func(key string, rec *record) bool {
		if err := ctx.Err(); err != nil {
			rangeErr = err
			return false
		}
		if rec.cachedAt.Before(cutoff) && s.remove(key, rec, ReasonAged) {
			count++
		}
		return true
	})
	return count, rangeErr
}

// SweepExpired removes entries past their absolute expiration or with a
// lapsed sliding window, then reaps orphaned metadata.
func (s *MemoryStore) SweepExpired(ctx context.Context) (int, error) {
	now := s.cfg.Clock.Now()
	count := 0
	var rangeErr error
	s.meta.Range(func(key string, rec *record) bool {
		if err := ctx.Err(); err != nil {
			rangeErr = err
			return false
		}
		if reason, evict := rec.lapsed(now); evict && s.remove(key, rec, reason) {
			count++
		}
		return true
	})
	if rangeErr == nil {
		rangeErr = s.reapOrphans(ctx)
	}
	return count, rangeErr
}

// OnEviction registers a hook invoked synchronously after each removal.
func (s *MemoryStore) OnEviction(hook EvictionHook) {
	if hook == nil {
		return
	}
	s.hookMu.Lock()
	s.hooks = append(s.hooks, hook)
	s.hookMu.Unlock()
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	return s.values.Size()
}

func (s *MemoryStore) snapshot(key string, r *record) Metadata {
	return Metadata{
		Key:               key,
		TypeKey:           r.typeKey,
		CachedAt:          r.cachedAt,
		AbsoluteExpiresAt: r.expiresAt,
		SlidingWindow:     r.window,
		LastAccessedAt:    time.Unix(0, r.lastAccess.Load()),
	}
}

// remove deletes the entry and its metadata only while both still belong to
// rec, so a concurrent overwrite is never torn down.
func (s *MemoryStore) remove(key string, rec *record, reason EvictionReason) bool {
	removed := false
	s.values.Compute(key, func(old *entry, loaded bool) (*entry, bool) {
		if !loaded {
			return nil, true
		}
		if old.rec != rec {
			return old, false
		}
		removed = true
		return nil, true
	})
	if !removed {
		return false
	}

	s.meta.Compute(key, func(old *record, loaded bool) (*record, bool) {
		if !loaded {
			return nil, true
		}
		if old != rec {
			return old, false
		}
		return nil, true
	})

	s.notify(s.snapshot(key, rec), reason)
	return true
}

// reapOrphans drops metadata records whose entry is gone, bounding any
// divergence between the two maps to one cleanup cycle.
func (s *MemoryStore) reapOrphans(ctx context.Context) error {
	var rangeErr error
	s.meta.Range(func(key string, rec *record) bool {
		if err := ctx.Err(); err != nil {
			rangeErr = err
			return false
		}
		if e, ok := s.values.Load(key); ok && e.rec == rec {
			return true
		}
		s.meta.Compute(key, func(old *record, loaded bool) (*record, bool) {
			if !loaded {
				return nil, true
			}
			if old != rec {
				return old, false
			}
			return nil, true
		})
		return true
	})
	return rangeErr
}

func (s *MemoryStore) notify(meta Metadata, reason EvictionReason) {
	s.hookMu.RLock()
	hooks := make([]EvictionHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.hookMu.RUnlock()

	for _, hook := range hooks {
		hook(meta, reason)
	}
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
