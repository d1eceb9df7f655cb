package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// JWKSConfig configures the JWKS key provider.
type JWKSConfig struct {
	// URL is the JWKS endpoint.
	URL string

	// CacheTTL is how long fetched keys stay fresh before a refresh.
	// Default: 1 hour
	CacheTTL time.Duration

	// HTTPClient performs the fetches. Nil uses a client with a 30s
	// timeout.
	HTTPClient *http.Client
}

// JWKSKeyProvider serves RSA verification keys fetched from a JWKS
// endpoint. Keys are cached for CacheTTL; concurrent refreshes collapse
// into one fetch, and a failed refresh falls back to the last good key
// set.
type JWKSKeyProvider struct {
	config JWKSConfig

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	fallback  map[string]*rsa.PublicKey

	group singleflight.Group
}

// NewJWKSKeyProvider creates a provider for the configured endpoint.
func NewJWKSKeyProvider(config JWKSConfig) *JWKSKeyProvider {
	if config.CacheTTL == 0 {
		config.CacheTTL = time.Hour
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &JWKSKeyProvider{
		config:   config,
		keys:     make(map[string]*rsa.PublicKey),
		fallback: make(map[string]*rsa.PublicKey),
	}
}

// GetKey returns the key for the given key id, refreshing the cached set
// when it is stale or the id is unknown. An empty keyID selects the only
// key in single-key sets.
func (p *JWKSKeyProvider) GetKey(ctx context.Context, keyID string) (any, error) {
	p.mu.RLock()
	fresh := time.Since(p.fetchedAt) < p.config.CacheTTL
	if fresh {
		if key := p.lookupLocked(keyID); key != nil {
			p.mu.RUnlock()
			return key, nil
		}
	}
	p.mu.RUnlock()

	// One refresh at a time; every waiter shares its outcome.
	_, err, _ := p.group.Do("refresh", func() (any, error) {
		return nil, p.refresh(ctx)
	})
	if err != nil {
		// Serve the last good key set while the endpoint is down.
		p.mu.RLock()
		key := p.lookupLocked(keyID)
		if key == nil {
			key = p.fallbackLocked(keyID)
		}
		p.mu.RUnlock()
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	p.mu.RLock()
	key := p.lookupLocked(keyID)
	p.mu.RUnlock()
	if key == nil {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// lookupLocked finds a key by id. Caller holds at least RLock.
func (p *JWKSKeyProvider) lookupLocked(keyID string) *rsa.PublicKey {
	if keyID == "" {
		for _, key := range p.keys {
			return key
		}
		return nil
	}
	return p.keys[keyID]
}

// fallbackLocked finds a key in the last good set. Caller holds at least
// RLock.
func (p *JWKSKeyProvider) fallbackLocked(keyID string) *rsa.PublicKey {
	if keyID == "" {
		for _, key := range p.fallback {
			return key
		}
		return nil
	}
	return p.fallback[keyID]
}

func (p *JWKSKeyProvider) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL, nil)
	if err != nil {
		return fmt.Errorf("auth: create jwks request: %w", err)
	}

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth: fetch jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: jwks endpoint returned %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("auth: decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAPublicKey(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	p.mu.Lock()
	p.keys = keys
	p.fetchedAt = time.Now()
	for kid, key := range keys {
		p.fallback[kid] = key
	}
	p.mu.Unlock()
	return nil
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseRSAPublicKey(k jwk) (*rsa.PublicKey, error) {
	if k.N == "" || k.E == "" {
		return nil, fmt.Errorf("auth: jwk %q missing modulus or exponent", k.Kid)
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("auth: decode jwk modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("auth: decode jwk exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}

var _ KeyProvider = (*JWKSKeyProvider)(nil)
