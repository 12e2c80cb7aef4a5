package domain

import (
	"context"
	"time"
)

// AuthUser is the identity returned by the backend's auth service
type AuthUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Role         string         `json:"role,omitempty"`
	LastSignInAt *time.Time     `json:"last_sign_in_at,omitempty"`
	Metadata     map[string]any `json:"user_metadata,omitempty"`
}

// AuthSession is the result of a successful sign-in
type AuthSession struct {
	AccessToken  string    `json:"-"` // Never serialize
	RefreshToken string    `json:"-"` // Never serialize
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         AuthUser  `json:"user"`
}

// IsExpired checks whether the access token has expired
func (s *AuthSession) IsExpired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}

// SignInRequest represents a sign-in attempt
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accessTokenKey struct{}

// WithAccessToken scopes ctx to one caller. Adapters send token as bearer in
// place of any session they hold, and sign-in or sign-out under a scoped
// context leaves that session alone. An empty token means the caller is
// anonymous.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFromContext returns the caller's token and whether ctx was scoped
func AccessTokenFromContext(ctx context.Context) (token string, scoped bool) {
	token, scoped = ctx.Value(accessTokenKey{}).(string)
	return token, scoped
}
