package config

import (
	"errors"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if got := cfg.Cache.DefaultAbsoluteExpiration.Duration(); got != 5*time.Minute {
		t.Errorf("Cache.DefaultAbsoluteExpiration = %v, want 5m", got)
	}
	if got := cfg.Cache.MaxAbsoluteExpiration.Duration(); got != time.Hour {
		t.Errorf("Cache.MaxAbsoluteExpiration = %v, want 1h", got)
	}
	if got := cfg.Cache.DefaultSlidingExpiration.Duration(); got != 0 {
		t.Errorf("Cache.DefaultSlidingExpiration = %v, want 0 (disabled)", got)
	}
	if got := cfg.Cache.CleanupInterval.Duration(); got != time.Minute {
		t.Errorf("Cache.CleanupInterval = %v, want 1m", got)
	}
	if cfg.Cache.MaxKeyPlans != 256 {
		t.Errorf("Cache.MaxKeyPlans = %d, want 256", cfg.Cache.MaxKeyPlans)
	}

	if cfg.Retry.MaxRetryCount != 3 {
		t.Errorf("Retry.MaxRetryCount = %d, want 3", cfg.Retry.MaxRetryCount)
	}
	if !cfg.Retry.UseExponentialBackoff {
		t.Error("Retry.UseExponentialBackoff = false, want true")
	}

	if cfg.Observability.ServiceName != "relay" {
		t.Errorf("Observability.ServiceName = %q, want %q", cfg.Observability.ServiceName, "relay")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestCacheConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CacheConfig
		wantErr bool
	}{
		{"zero value", CacheConfig{}, false},
		{"negative ttl", CacheConfig{DefaultAbsoluteExpiration: Duration(-time.Second)}, true},
		{"negative sweep interval", CacheConfig{CleanupInterval: Duration(-time.Minute)}, true},
		{"negative age", CacheConfig{MaxCacheAge: Duration(-time.Hour)}, true},
		{"default above cap", CacheConfig{
			DefaultAbsoluteExpiration: Duration(2 * time.Hour),
			MaxAbsoluteExpiration:     Duration(time.Hour),
		}, true},
		{"negative key plans", CacheConfig{MaxKeyPlans: -1}, true},
		{"sensible", CacheConfig{
			DefaultAbsoluteExpiration: Duration(time.Minute),
			MaxAbsoluteExpiration:     Duration(time.Hour),
			CleanupInterval:           Duration(30 * time.Second),
			MaxKeyPlans:               64,
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}
}

func TestRetryConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RetryConfig
		wantErr bool
	}{
		{"zero value", RetryConfig{}, false},
		{"negative count", RetryConfig{MaxRetryCount: -1}, true},
		{"negative base delay", RetryConfig{BaseDelay: Duration(-time.Second)}, true},
		{"negative jitter", RetryConfig{MaxJitter: Duration(-time.Millisecond)}, true},
		{"base above max", RetryConfig{
			BaseDelay: Duration(time.Minute),
			MaxDelay:  Duration(time.Second),
		}, true},
		{"sensible", RetryConfig{
			MaxRetryCount:         5,
			BaseDelay:             Duration(50 * time.Millisecond),
			MaxDelay:              Duration(10 * time.Second),
			UseExponentialBackoff: true,
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestObservabilityConfig_Validate(t *testing.T) {
	t.Run("missing service name", func(t *testing.T) {
		cfg := ObservabilityConfig{}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("Validate() error = %v, want ErrInvalid", err)
		}
	})

	t.Run("bad tracing exporter", func(t *testing.T) {
		cfg := ObservabilityConfig{
			ServiceName: "relay",
			Tracing:     TracingConfig{Enabled: true, Exporter: "carrier-pigeon"},
		}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("Validate() error = %v, want ErrInvalid", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		cfg := ObservabilityConfig{
			ServiceName: "relay",
			Logging:     LoggingConfig{Enabled: true, Level: "debug", Format: "console"},
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestCacheConfig_Conversions(t *testing.T) {
	cfg := CacheConfig{
		DefaultAbsoluteExpiration: Duration(time.Minute),
		MaxAbsoluteExpiration:     Duration(time.Hour),
		DefaultSlidingExpiration:  Duration(10 * time.Second),
		CleanupInterval:           Duration(15 * time.Second),
		MaxCacheAge:               Duration(2 * time.Hour),
		MaxKeyPlans:               32,
	}

	store := cfg.StoreConfig()
	if store.DefaultAbsoluteTTL != time.Minute {
		t.Errorf("StoreConfig().DefaultAbsoluteTTL = %v, want 1m", store.DefaultAbsoluteTTL)
	}
	if store.MaxAbsoluteTTL != time.Hour {
		t.Errorf("StoreConfig().MaxAbsoluteTTL = %v, want 1h", store.MaxAbsoluteTTL)
	}
	if store.DefaultSlidingTTL != 10*time.Second {
		t.Errorf("StoreConfig().DefaultSlidingTTL = %v, want 10s", store.DefaultSlidingTTL)
	}

	janitor := cfg.JanitorConfig()
	if janitor.Interval != 15*time.Second {
		t.Errorf("JanitorConfig().Interval = %v, want 15s", janitor.Interval)
	}
	if janitor.MaxAge != 2*time.Hour {
		t.Errorf("JanitorConfig().MaxAge = %v, want 2h", janitor.MaxAge)
	}

	if cfg.Keyer() == nil {
		t.Error("Keyer() = nil")
	}
}

func TestRetryConfig_Policy(t *testing.T) {
	cfg := RetryConfig{
		MaxRetryCount:         4,
		BaseDelay:             Duration(20 * time.Millisecond),
		MaxDelay:              Duration(2 * time.Second),
		MaxJitter:             Duration(5 * time.Millisecond),
		UseExponentialBackoff: true,
		PerAttemptTimeout:     Duration(time.Second),
	}

	policy := cfg.Policy()
	if policy.MaxRetryCount != 4 {
		t.Errorf("MaxRetryCount = %d, want 4", policy.MaxRetryCount)
	}
	if policy.BaseDelay != 20*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 20ms", policy.BaseDelay)
	}
	if policy.MaxDelay != 2*time.Second {
		t.Errorf("MaxDelay = %v, want 2s", policy.MaxDelay)
	}
	if policy.MaxJitter != 5*time.Millisecond {
		t.Errorf("MaxJitter = %v, want 5ms", policy.MaxJitter)
	}
	if !policy.UseExponentialBackoff {
		t.Error("UseExponentialBackoff = false, want true")
	}
	if policy.PerAttemptTimeout != time.Second {
		t.Errorf("PerAttemptTimeout = %v, want 1s", policy.PerAttemptTimeout)
	}
	if policy.RetryOnFault != nil || policy.RetryOnFailure != nil {
		t.Error("predicates should stay unset for the caller to attach")
	}
}

func TestObservabilityConfig_ObserveConfig(t *testing.T) {
	cfg := ObservabilityConfig{
		ServiceName: "relay",
		Version:     "1.2.3",
		Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.25},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
		Logging:     LoggingConfig{Enabled: true, Level: "warn", Format: "json"},
	}

	got := cfg.ObserveConfig()
	if got.ServiceName != "relay" || got.Version != "1.2.3" {
		t.Errorf("identity fields = %q/%q, want relay/1.2.3", got.ServiceName, got.Version)
	}
	if !got.Tracing.Enabled || got.Tracing.Exporter != "stdout" || got.Tracing.SamplePct != 0.25 {
		t.Errorf("Tracing = %+v, want enabled stdout 0.25", got.Tracing)
	}
	if !got.Metrics.Enabled || got.Metrics.Exporter != "prometheus" {
		t.Errorf("Metrics = %+v, want enabled prometheus", got.Metrics)
	}
	if !got.Logging.Enabled || got.Logging.Level != "warn" || got.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want enabled warn json", got.Logging)
	}
}
