package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// tokenResponse is the GoTrue password grant response
type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int64           `json:"expires_in"`
	ExpiresAt    int64           `json:"expires_at"`
	RefreshToken string          `json:"refresh_token"`
	User         domain.AuthUser `json:"user"`
}

// SignIn authenticates with email and password. On success the access token
// replaces the anon key as bearer for restricted requests until SignOut.
// Under a context from domain.WithAccessToken the session is only returned.
func (a *Adapter) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	var resp tokenResponse
	err := a.restricted.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   domain.SignInRequest{Email: email, Password: password},
		token:  a.restricted.apiKey,
	}, &resp)
	if err != nil {
		if be, ok := domain.AsBackendError(err); ok && be.Status == http.StatusBadRequest && be.Code == "" {
			// Older GoTrue releases answer a rejected login with a bare 400
			be.Code = "invalid_credentials"
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("sign in: %w: no access token in response", domain.ErrUnauthorized)
	}

	session := &domain.AuthSession{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         resp.User,
	}
	switch {
	case resp.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		session.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	if _, scoped := domain.AccessTokenFromContext(ctx); !scoped {
		a.session.Store(session)
	}
	a.logger.Info("signed in", "user_id", session.User.ID)
	return session, nil
}

// SignOut revokes the current session. The local session is dropped even if
// the backend call fails. Without a session it does nothing. Under a scoped
// context only the caller's token is revoked.
func (a *Adapter) SignOut(ctx context.Context) error {
	token, scoped := domain.AccessTokenFromContext(ctx)
	if !scoped {
		session := a.session.Swap(nil)
		if session == nil {
			return nil
		}
		token = session.AccessToken
	}
	if token == "" {
		return nil
	}

	err := a.restricted.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/logout",
		token:  token,
	}, nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// currentSession returns the adapter's own auth session, if any
func (a *Adapter) currentSession() (*domain.AuthSession, bool) {
	s := a.session.Load()
	return s, s != nil
}

// User resolves the user behind the bearer of ctx. Without a user token it
// fails with domain.ErrUnauthorized and never asks the backend.
func (a *Adapter) User(ctx context.Context) (*domain.AuthUser, error) {
	token := a.userToken(ctx)
	if token == "" {
		return nil, fmt.Errorf("user: %w: no access token", domain.ErrUnauthorized)
	}

	var user domain.AuthUser
	err := a.restricted.do(ctx, request{
		method: http.MethodGet,
		path:   authPath + "/user",
		token:  token,
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("user: %w: no user in response", domain.ErrUnauthorized)
	}
	return &user, nil
}

// userToken is the bearer hook of the restricted client. A scoped context
// wins over the adapter's own session, even when its token is empty.
func (a *Adapter) userToken(ctx context.Context) string {
	if token, scoped := domain.AccessTokenFromContext(ctx); scoped {
		return token
	}
	s := a.session.Load()
	if s == nil || s.IsExpired() {
		return ""
	}
	return s.AccessToken
}
