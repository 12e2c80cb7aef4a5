package driving

import (
	"context"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// AuthService signs users in against the active provider and tracks the current user
type AuthService interface {
	// SignIn authenticates and, on success only, sets the current user
	SignIn(ctx context.Context, req domain.SignInRequest) (*domain.AuthSession, error)

	// SignOut ends the session and clears the current user
	SignOut(ctx context.Context) error

	// CurrentUser returns the signed-in user, or nil
	CurrentUser() *domain.AuthUser

	// Login authenticates for a caller that keeps its own tokens.
	// Neither the current user nor the adapter's session changes.
	Login(ctx context.Context, req domain.SignInRequest) (*domain.AuthSession, error)

	// Authenticate resolves the user owning token on the active provider
	Authenticate(ctx context.Context, token string) (*domain.AuthUser, error)

	// Logout revokes token on the active provider
	Logout(ctx context.Context, token string) error
}
