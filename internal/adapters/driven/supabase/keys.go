package supabase

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// Roles carried by project API keys
const (
	RoleAnon        = "anon"
	RoleServiceRole = "service_role"
)

// Opaque key prefixes used by newer projects instead of JWTs
const (
	publishableKeyPrefix = "sb_publishable_"
	secretKeyPrefix      = "sb_secret_"
)

// keyClaims are the claims Supabase puts in project keys and access tokens
type keyClaims struct {
	Role string `json:"role"`
	Ref  string `json:"ref,omitempty"`
	jwt.RegisteredClaims
}

// KeyInfo describes a project key without revealing it
type KeyInfo struct {
	Role      string    `json:"role"`
	Ref       string    `json:"ref,omitempty"`
	Issuer    string    `json:"issuer,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Opaque    bool      `json:"opaque"` // sb_ key rather than a JWT
}

// Elevated reports whether the key bypasses row-level security
func (k KeyInfo) Elevated() bool {
	return k.Role == RoleServiceRole
}

// Expired reports whether the key carries an expiry in the past
func (k KeyInfo) Expired(now time.Time) bool {
	return !k.ExpiresAt.IsZero() && now.After(k.ExpiresAt)
}

// InspectKey reads the role and expiry of a project key.
// The signature is not verified; only the backend can do that.
func InspectKey(key string) (KeyInfo, error) {
	key = strings.TrimSpace(key)
	switch {
	case strings.HasPrefix(key, publishableKeyPrefix):
		return KeyInfo{Role: RoleAnon, Opaque: true}, nil
	case strings.HasPrefix(key, secretKeyPrefix):
		return KeyInfo{Role: RoleServiceRole, Opaque: true}, nil
	}

	var claims keyClaims
	if _, _, err := jwt.NewParser().ParseUnverified(key, &claims); err != nil {
		return KeyInfo{}, fmt.Errorf("%w: key is not a supabase JWT: %v", domain.ErrInvalidInput, err)
	}

	info := KeyInfo{
		Role:   claims.Role,
		Ref:    claims.Ref,
		Issuer: claims.Issuer,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
