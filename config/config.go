package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/relay/cache"
	"github.com/jonwraymond/relay/observe"
	"github.com/jonwraymond/relay/retry"
)

// ErrInvalid is wrapped by every validation failure, with the offending
// field named in the message.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the root configuration document.
type Config struct {
	Cache         CacheConfig         `yaml:"cache" json:"cache"`
	Retry         RetryConfig         `yaml:"retry" json:"retry"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// CacheConfig configures the result cache and its cleanup task.
type CacheConfig struct {
	// DefaultAbsoluteExpiration applies when a write carries no explicit
	// absolute TTL.
	DefaultAbsoluteExpiration Duration `yaml:"defaultAbsoluteExpiration,omitempty" json:"defaultAbsoluteExpiration,omitempty"`

	// MaxAbsoluteExpiration caps per-entry absolute TTL overrides.
	MaxAbsoluteExpiration Duration `yaml:"maxAbsoluteExpiration,omitempty" json:"maxAbsoluteExpiration,omitempty"`

	// DefaultSlidingExpiration applies when a write carries no explicit
	// sliding TTL. Zero disables sliding expiration.
	DefaultSlidingExpiration Duration `yaml:"defaultSlidingExpiration,omitempty" json:"defaultSlidingExpiration,omitempty"`

	// CleanupInterval is the pause between janitor sweep passes.
	CleanupInterval Duration `yaml:"cleanupInterval,omitempty" json:"cleanupInterval,omitempty"`

	// MaxCacheAge prunes entries cached longer ago than this regardless of
	// expiration state. Zero disables age pruning.
	MaxCacheAge Duration `yaml:"maxCacheAge,omitempty" json:"maxCacheAge,omitempty"`

	// MaxKeyPlans bounds the keyer's per-type field plan memo.
	MaxKeyPlans int `yaml:"maxKeyPlans,omitempty" json:"maxKeyPlans,omitempty"`
}

// RetryConfig configures the retrying executor.
//
// The retry predicates are code, not configuration: Policy() leaves
// RetryOnFault and RetryOnFailure unset for the caller to attach.
type RetryConfig struct {
	// MaxRetryCount is the number of retries after the first attempt.
	MaxRetryCount int `yaml:"maxRetryCount" json:"maxRetryCount"`

	// BaseDelay seeds the backoff sequence.
	BaseDelay Duration `yaml:"baseDelay,omitempty" json:"baseDelay,omitempty"`

	// MaxDelay caps the computed delay before jitter.
	MaxDelay Duration `yaml:"maxDelay,omitempty" json:"maxDelay,omitempty"`

	// MaxJitter bounds the uniform random addition to each delay.
	MaxJitter Duration `yaml:"maxJitter,omitempty" json:"maxJitter,omitempty"`

	// UseExponentialBackoff doubles the delay per attempt when true;
	// otherwise every delay is BaseDelay.
	UseExponentialBackoff bool `yaml:"useExponentialBackoff" json:"useExponentialBackoff"`

	// PerAttemptTimeout bounds each attempt. Zero disables the bound.
	PerAttemptTimeout Duration `yaml:"perAttemptTimeout,omitempty" json:"perAttemptTimeout,omitempty"`
}

// ObservabilityConfig mirrors observe.Config for file-based setup.
type ObservabilityConfig struct {
	ServiceName string        `yaml:"serviceName" json:"serviceName"`
	Version     string        `yaml:"version,omitempty" json:"version,omitempty"`
	Tracing     TracingConfig `yaml:"tracing,omitempty" json:"tracing,omitempty"`
	Metrics     MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	Logging     LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
}

// TracingConfig configures the tracing subsystem.
type TracingConfig struct {
	Enabled   bool    `yaml:"enabled" json:"enabled"`
	Exporter  string  `yaml:"exporter,omitempty" json:"exporter,omitempty"`
	SamplePct float64 `yaml:"samplePct,omitempty" json:"samplePct,omitempty"`
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Exporter string `yaml:"exporter,omitempty" json:"exporter,omitempty"`
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Level   string `yaml:"level,omitempty" json:"level,omitempty"`
	Format  string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Default returns the configuration used when a file provides nothing.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			DefaultAbsoluteExpiration: Duration(5 * time.Minute),
			MaxAbsoluteExpiration:     Duration(time.Hour),
			CleanupInterval:           Duration(time.Minute),
			MaxKeyPlans:               256,
		},
		Retry: RetryConfig{
			MaxRetryCount:         3,
			BaseDelay:             Duration(100 * time.Millisecond),
			MaxDelay:              Duration(30 * time.Second),
			MaxJitter:             Duration(100 * time.Millisecond),
			UseExponentialBackoff: true,
		},
		Observability: ObservabilityConfig{
			ServiceName: "relay",
			Logging: LoggingConfig{
				Enabled: true,
				Level:   "info",
				Format:  "json",
			},
		},
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Retry.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

// Validate rejects negative durations and inverted bounds.
func (c *CacheConfig) Validate() error {
	for _, f := range []struct {
		name  string
		value Duration
	}{
		{"cache.defaultAbsoluteExpiration", c.DefaultAbsoluteExpiration},
		{"cache.maxAbsoluteExpiration", c.MaxAbsoluteExpiration},
		{"cache.defaultSlidingExpiration", c.DefaultSlidingExpiration},
		{"cache.cleanupInterval", c.CleanupInterval},
		{"cache.maxCacheAge", c.MaxCacheAge},
	} {
		if f.value < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalid, f.name)
		}
	}
	if c.MaxAbsoluteExpiration > 0 && c.DefaultAbsoluteExpiration > c.MaxAbsoluteExpiration {
		return fmt.Errorf("%w: cache.defaultAbsoluteExpiration exceeds cache.maxAbsoluteExpiration", ErrInvalid)
	}
	if c.MaxKeyPlans < 0 {
		return fmt.Errorf("%w: cache.maxKeyPlans is negative", ErrInvalid)
	}
	return nil
}

// Validate rejects negative counts, negative durations, and inverted
// delay bounds.
func (c *RetryConfig) Validate() error {
	if c.MaxRetryCount < 0 {
		return fmt.Errorf("%w: retry.maxRetryCount is negative", ErrInvalid)
	}
	for _, f := range []struct {
		name  string
		value Duration
	}{
		{"retry.baseDelay", c.BaseDelay},
		{"retry.maxDelay", c.MaxDelay},
		{"retry.maxJitter", c.MaxJitter},
		{"retry.perAttemptTimeout", c.PerAttemptTimeout},
	} {
		if f.value < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalid, f.name)
		}
	}
	if c.MaxDelay > 0 && c.BaseDelay > c.MaxDelay {
		return fmt.Errorf("%w: retry.baseDelay exceeds retry.maxDelay", ErrInvalid)
	}
	return nil
}

// Validate delegates to the observe package's own rules.
func (c *ObservabilityConfig) Validate() error {
	observeCfg := c.ObserveConfig()
	if err := observeCfg.Validate(); err != nil {
		return fmt.Errorf("%w: observability: %v", ErrInvalid, err)
	}
	return nil
}

// StoreConfig converts the section into the cache store's configuration.
func (c CacheConfig) StoreConfig() cache.Config {
	return cache.Config{
		DefaultAbsoluteTTL: c.DefaultAbsoluteExpiration.Duration(),
		MaxAbsoluteTTL:     c.MaxAbsoluteExpiration.Duration(),
		DefaultSlidingTTL:  c.DefaultSlidingExpiration.Duration(),
	}
}

// JanitorConfig converts the section into the janitor's configuration. The
// caller attaches a logger and sink.
func (c CacheConfig) JanitorConfig() cache.JanitorConfig {
	return cache.JanitorConfig{
		Interval: c.CleanupInterval.Duration(),
		MaxAge:   c.MaxCacheAge.Duration(),
	}
}

// Keyer builds a keyer with the configured plan memo bound.
func (c CacheConfig) Keyer() *cache.DefaultKeyer {
	return cache.NewDefaultKeyerSized(c.MaxKeyPlans)
}

// Policy converts the section into a retry policy. RetryOnFault and
// RetryOnFailure stay nil; attach predicates before building an executor.
func (c RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxRetryCount:         c.MaxRetryCount,
		BaseDelay:             c.BaseDelay.Duration(),
		MaxDelay:              c.MaxDelay.Duration(),
		MaxJitter:             c.MaxJitter.Duration(),
		UseExponentialBackoff: c.UseExponentialBackoff,
		PerAttemptTimeout:     c.PerAttemptTimeout.Duration(),
	}
}

// ObserveConfig converts the section into the observe package's form.
func (c ObservabilityConfig) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     c.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Tracing.Enabled,
			Exporter:  c.Tracing.Exporter,
			SamplePct: c.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Metrics.Enabled,
			Exporter: c.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.Logging.Enabled,
			Level:   c.Logging.Level,
			Format:  c.Logging.Format,
		},
	}
}
