package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/relay/observe"
	"github.com/jonwraymond/relay/pipeline"
)

// DefaultInterceptorOrder places caching outside observation and retries
// so hits short-circuit them. Authentication binds further out still; a
// hit must not bypass it.
const DefaultInterceptorOrder = -100

// SkipRule determines whether caching is skipped for a request.
// Returns true if caching should be skipped.
type SkipRule func(env pipeline.Envelope) bool

// InterceptorConfig configures the caching interceptor.
type InterceptorConfig struct {
	// AbsoluteTTL overrides the store's default absolute expiration for
	// entries written by this interceptor. Zero keeps the store default;
	// negative disables absolute expiration.
	AbsoluteTTL time.Duration

	// SlidingTTL overrides the store's default sliding window. Zero keeps
	// the store default; negative disables sliding expiration.
	SlidingTTL time.Duration

	// Skip marks requests that bypass caching entirely. Nil caches every
	// request.
	Skip SkipRule

	// DisableCoalescing turns off single-flight execution of concurrent
	// misses for the same key.
	DisableCoalescing bool

	// Logger records degraded-mode warnings. Nil disables logging.
	Logger observe.Logger

	// Sink receives cache lookup and write events. Nil discards them.
	Sink observe.Sink
}

// Interceptor short-circuits dispatch with cached results.
//
// Cache failures never fail a request: key derivation and store errors
// degrade to a miss and the request proceeds to the handler.
type Interceptor struct {
	store  Store
	keyer  Keyer
	cfg    InterceptorConfig
	flight singleflight.Group
}

// NewInterceptor creates a caching interceptor. A nil keyer falls back to
// the default SHA-256 keyer.
func NewInterceptor(store Store, keyer Keyer, cfg InterceptorConfig) (*Interceptor, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Sink == nil {
		cfg.Sink = observe.NopSink{}
	}
	return &Interceptor{store: store, keyer: keyer, cfg: cfg}, nil
}

// Name identifies the interceptor in logs and events.
func (i *Interceptor) Name() string { return "cache" }

// DefaultOrder returns the default execution order.
func (i *Interceptor) DefaultOrder() int { return DefaultInterceptorOrder }

// Intercept returns the cached outcome on a hit. On a miss it invokes next
// and stores successful outcomes. Failed outcomes and faults pass through
// uncached.
func (i *Interceptor) Intercept(ctx context.Context, env pipeline.Envelope, next pipeline.Next) (pipeline.Outcome, error) {
	if i.cfg.Skip != nil && i.cfg.Skip(env) {
		return next(ctx)
	}

	key, err := i.keyer.Key(env.TypeKey(), env.PayloadAny())
	if err != nil {
		// Degraded: execute without caching.
		i.cfg.Logger.Warn("cache key derivation failed",
			observe.String("request_type", env.TypeKey()), observe.Err(err))
		return next(ctx)
	}

	out, _, hit, err := i.store.TryGet(ctx, key)
	if err != nil {
		i.cfg.Logger.Warn("cache read failed, treating as miss",
			observe.String("cache_key", key), observe.Err(err))
		hit = false
	}
	i.cfg.Sink.Emit(ctx, observe.CacheLookup{TypeKey: env.TypeKey(), Key: key, Hit: hit})
	if hit {
		return out, nil
	}

	if i.cfg.DisableCoalescing {
		return i.fill(ctx, env, key, next)
	}

	// Concurrent misses for one key share a single execution. Followers
	// inherit the winner's outcome, including faults.
	ch := i.flight.DoChan(key, func() (any, error) {
		return i.fill(ctx, env, key, next)
	})
	select {
	case res := <-ch:
		filled, _ := res.Val.(pipeline.Outcome)
		return filled, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fill executes the rest of the pipeline and stores a successful outcome.
func (i *Interceptor) fill(ctx context.Context, env pipeline.Envelope, key string, next pipeline.Next) (pipeline.Outcome, error) {
	out, err := next(ctx)
	if err != nil || out == nil || !out.IsSuccess() {
		// Failures and faults are never cached.
		return out, err
	}

	if setErr := i.store.Set(ctx, key, out, env.TypeKey(), i.setOptions()...); setErr != nil {
		i.cfg.Logger.Warn("cache write failed",
			observe.String("cache_key", key), observe.Err(setErr))
		return out, nil
	}

	i.cfg.Sink.Emit(ctx, observe.CacheWrite{
		TypeKey:     env.TypeKey(),
		Key:         key,
		AbsoluteTTL: i.cfg.AbsoluteTTL,
		SlidingTTL:  i.cfg.SlidingTTL,
	})
	return out, nil
}

func (i *Interceptor) setOptions() []SetOption {
	var opts []SetOption
	if i.cfg.AbsoluteTTL != 0 {
		opts = append(opts, WithAbsoluteTTL(i.cfg.AbsoluteTTL))
	}
	if i.cfg.SlidingTTL != 0 {
		opts = append(opts, WithSlidingTTL(i.cfg.SlidingTTL))
	}
	return opts
}

var _ pipeline.Interceptor = (*Interceptor)(nil)
var _ pipeline.Ordered = (*Interceptor)(nil)
