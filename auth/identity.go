package auth

import "time"

// Method indicates how an identity was established.
type Method string

const (
	MethodNone      Method = "none"
	MethodJWT       Method = "jwt"
	MethodAnonymous Method = "anonymous"
)

// Identity is an authenticated principal as seen by handlers.
type Identity struct {
	// Principal is the unique identifier (subject claim).
	Principal string

	// TenantID is the tenant this identity belongs to, when the token
	// carries one.
	TenantID string

	// Roles are the roles granted to this identity.
	Roles []string

	// Method indicates how the identity was established.
	Method Method

	// Claims holds the raw verified token claims.
	Claims map[string]any

	// ExpiresAt is the token expiry. Zero means no expiry claim.
	ExpiresAt time.Time

	// IssuedAt is the token issue time. Zero means no issue claim.
	IssuedAt time.Time
}

// HasRole reports whether the identity carries the given role.
func (id *Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsExpired reports whether the identity's token is past its expiry.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// IsAnonymous reports whether this identity was established without
// credentials.
func (id *Identity) IsAnonymous() bool {
	return id.Method == MethodAnonymous || id.Principal == ""
}

// AnonymousIdentity creates the identity attached when an interceptor
// configured with AllowAnonymous sees a request without a token.
func AnonymousIdentity() *Identity {
	return &Identity{
		Principal: "anonymous",
		Method:    MethodAnonymous,
		Claims:    make(map[string]any),
	}
}
