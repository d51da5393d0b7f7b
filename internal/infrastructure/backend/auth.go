package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

const (
	pathPasswordLogin = "/api/v1/auth/password"
	pathRefresh       = "/api/v1/auth/refresh"
	pathSwitchRole    = "/api/v1/user/switch-role"
	pathCurrentUser   = "/api/v1/user/me"
)

type passwordLoginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

type passwordLoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	UserID       string   `json:"userId"`
	Roles        []string `json:"roles"`
	CurrentRole  string   `json:"currentRole"`
	ExpiresIn    int      `json:"expiresIn"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type switchRoleRequest struct {
	NewRole string `json:"newRole"`
}

type switchRoleResponse struct {
	AccessToken  string `json:"accessToken"`
	CurrentRole  string `json:"currentRole"`
	LastUsedRole string `json:"lastUsedRole"`
}

type userResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Nickname     string    `json:"nickname"`
	Avatar       string    `json:"avatar"`
	PhoneNumber  string    `json:"phoneNumber"`
	Roles        []string  `json:"roles"`
	CurrentRole  string    `json:"currentRole"`
	LastUsedRole string    `json:"lastUsedRole"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PasswordLogin exchanges a phone number and password for tokens.
func (c *Client) PasswordLogin(ctx context.Context, phoneNumber, password string) (*ports.LoginResult, error) {
	payload, err := marshal(passwordLoginRequest{PhoneNumber: phoneNumber, Password: password})
	if err != nil {
		return nil, err
	}
	var out passwordLoginResponse
	if err := c.send(ctx, "password_login", http.MethodPost, pathPasswordLogin, "", payload, &out); err != nil {
		return nil, err
	}
	return &ports.LoginResult{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		UserID:       out.UserID,
		Roles:        toRoles(out.Roles),
		CurrentRole:  domain.Role(out.CurrentRole).Normalize(),
		ExpiresIn:    out.ExpiresIn,
	}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*ports.RefreshResult, error) {
	payload, err := marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	var out refreshResponse
	if err := c.send(ctx, "refresh", http.MethodPost, pathRefresh, "", payload, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &domain.APIError{Status: http.StatusUnauthorized, Message: "refresh returned no access token"}
	}
	return &ports.RefreshResult{AccessToken: out.AccessToken, ExpiresIn: out.ExpiresIn}, nil
}

// SwitchRole asks the backend to make role the active one.
func (c *Client) SwitchRole(ctx context.Context, tokens ports.TokenSource, role domain.Role) (*ports.SwitchRoleResult, error) {
	payload, err := marshal(switchRoleRequest{NewRole: string(role)})
	if err != nil {
		return nil, err
	}
	var out switchRoleResponse
	if err := c.sendAuthed(ctx, "switch_role", tokens, http.MethodPost, pathSwitchRole, payload, &out); err != nil {
		return nil, err
	}
	return &ports.SwitchRoleResult{
		AccessToken:  out.AccessToken,
		CurrentRole:  domain.Role(out.CurrentRole).Normalize(),
		LastUsedRole: domain.Role(out.LastUsedRole).Normalize(),
	}, nil
}

// CurrentUser fetches the signed-in user's record.
func (c *Client) CurrentUser(ctx context.Context, tokens ports.TokenSource) (*domain.User, error) {
	var out userResponse
	if err := c.sendAuthed(ctx, "current_user", tokens, http.MethodGet, pathCurrentUser, nil, &out); err != nil {
		return nil, err
	}
	id := out.ID
	if id == "" {
		id = out.UserID
	}
	u := &domain.User{
		ID:           id,
		Nickname:     out.Nickname,
		Avatar:       out.Avatar,
		PhoneNumber:  out.PhoneNumber,
		Roles:        toRoles(out.Roles),
		CurrentRole:  domain.Role(out.CurrentRole),
		LastUsedRole: domain.Role(out.LastUsedRole),
		Status:       out.Status,
		CreatedAt:    out.CreatedAt,
		UpdatedAt:    out.UpdatedAt,
	}
	u.Normalize()
	return u, nil
}

func toRoles(raw []string) []domain.Role {
	out := make([]domain.Role, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.Role(r).Normalize())
	}
	return out
}
