package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerifierConfig configures token verification.
type VerifierConfig struct {
	// Issuer is the expected iss claim. Empty skips the check.
	Issuer string

	// Audience is the expected aud claim. Empty skips the check.
	Audience string

	// ValidMethods restricts accepted signing algorithms (e.g. "RS256",
	// "HS256"). Nil accepts any algorithm the key material supports.
	ValidMethods []string

	// Leeway is the clock skew tolerance applied to time claims.
	Leeway time.Duration

	// PrincipalClaim is the claim holding the principal.
	// Default: "sub"
	PrincipalClaim string

	// TenantClaim is the claim holding the tenant id. Empty skips it.
	TenantClaim string

	// RolesClaim is the claim holding the role list. Empty skips it.
	RolesClaim string
}

// KeyProvider supplies signing keys for token verification.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: GetKey honors cancellation when it fetches remotely.
// - Errors: an unknown key id returns ErrKeyNotFound.
type KeyProvider interface {
	// GetKey returns the verification key for the given key id. An empty
	// keyID asks for the provider's only (or default) key.
	GetKey(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider serves one fixed key regardless of key id, for HMAC
// secrets and single-key deployments.
type StaticKeyProvider struct {
	key any
}

// NewStaticKeyProvider creates a provider serving the given key. For HMAC
// algorithms pass a []byte secret; for RSA pass an *rsa.PublicKey.
func NewStaticKeyProvider(key any) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// GetKey returns the static key.
func (p *StaticKeyProvider) GetKey(_ context.Context, _ string) (any, error) {
	return p.key, nil
}

var _ KeyProvider = (*StaticKeyProvider)(nil)

// Verifier validates bearer tokens and extracts identities from their
// claims. One Verifier serves unlimited concurrent verifications.
type Verifier struct {
	config VerifierConfig
	keys   KeyProvider
	parser *jwt.Parser
}

// NewVerifier creates a verifier checking tokens against the provider's
// keys and the configured claim expectations.
func NewVerifier(config VerifierConfig, keys KeyProvider) (*Verifier, error) {
	if keys == nil {
		return nil, ErrNilKeyProvider
	}
	if config.PrincipalClaim == "" {
		config.PrincipalClaim = "sub"
	}

	var opts []jwt.ParserOption
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}
	if len(config.ValidMethods) > 0 {
		opts = append(opts, jwt.WithValidMethods(config.ValidMethods))
	}
	if config.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(config.Leeway))
	}

	return &Verifier{
		config: config,
		keys:   keys,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify parses and validates a bearer token and returns the identity its
// claims describe. The "Bearer " scheme prefix is accepted and stripped.
func (v *Verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := v.parser.Parse(token, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return v.keys.GetKey(ctx, kid)
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	return v.buildIdentity(claims), nil
}

// classifyTokenError maps parser errors onto the package sentinels so
// callers can match with errors.Is.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, ErrKeyNotFound):
		return ErrKeyNotFound
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

func (v *Verifier) buildIdentity(claims jwt.MapClaims) *Identity {
	identity := &Identity{
		Method: MethodJWT,
		Claims: make(map[string]any, len(claims)),
	}
	for k, val := range claims {
		identity.Claims[k] = val
	}

	if principal, ok := claims[v.config.PrincipalClaim].(string); ok {
		identity.Principal = principal
	}
	if v.config.TenantClaim != "" {
		if tenant, ok := claims[v.config.TenantClaim].(string); ok {
			identity.TenantID = tenant
		}
	}
	if v.config.RolesClaim != "" {
		identity.Roles = rolesFromClaim(claims[v.config.RolesClaim])
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = iat.Time
	}
	return identity
}

// rolesFromClaim accepts the two shapes issuers use: a JSON array of
// strings or a single string.
func rolesFromClaim(claim any) []string {
	switch v := claim.(type) {
	case []any:
		roles := make([]string, 0, len(v))
		for _, r := range v {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles
	case string:
		return []string{v}
	default:
		return nil
	}
}
