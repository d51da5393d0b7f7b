package ports

import (
	"context"

	"github.com/prbusiness/dashboard/internal/core/domain"
)

// TokenSource hands out the current tokens at the moment a request is sent
// and absorbs the outcome of a refresh.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	// RotateAccessToken persists a refreshed access token.
	RotateAccessToken(ctx context.Context, token string) error
	// Expire tears the session down after an irrecoverable auth failure.
	Expire(ctx context.Context) error
}

// LoginResult is the backend's answer to a password login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Roles        []domain.Role
	CurrentRole  domain.Role
	ExpiresIn    int
}

// RefreshResult carries a new access token.
type RefreshResult struct {
	AccessToken string
	ExpiresIn   int
}

// SwitchRoleResult confirms a role switch.
type SwitchRoleResult struct {
	AccessToken  string
	CurrentRole  domain.Role
	LastUsedRole domain.Role
}

// AuthGateway is the external authorization collaborator.
type AuthGateway interface {
	PasswordLogin(ctx context.Context, phoneNumber, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	SwitchRole(ctx context.Context, tokens TokenSource, role domain.Role) (*SwitchRoleResult, error)
	CurrentUser(ctx context.Context, tokens TokenSource) (*domain.User, error)
}
