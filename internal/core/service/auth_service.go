package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

// AuthService signs users in and out of a Session Store.
type AuthService struct {
	gateway ports.AuthGateway
	log     zerolog.Logger
}

func NewAuthService(gateway ports.AuthGateway, log zerolog.Logger) *AuthService {
	return &AuthService{gateway: gateway, log: log}
}

// Login exchanges the credentials for a session, then fills in the profile.
// A failed profile fetch keeps the minimal user from the login answer.
func (s *AuthService) Login(ctx context.Context, store *SessionStore, phoneNumber, password string) (*domain.User, error) {
	if phoneNumber == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	res, err := s.gateway.PasswordLogin(ctx, phoneNumber, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", classifyLoginError(err))
	}

	user := &domain.User{
		ID:          res.UserID,
		PhoneNumber: phoneNumber,
		Roles:       res.Roles,
		CurrentRole: res.CurrentRole,
	}
	if err := store.Login(ctx, res.AccessToken, res.RefreshToken, user); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	profile, err := s.gateway.CurrentUser(ctx, store)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", res.UserID).Msg("profile fetch after login failed")
		return store.User(), nil
	}
	if err := store.UpdateUser(ctx, mergeProfile(store.User(), profile)); err != nil {
		s.log.Warn().Err(err).Str("user_id", res.UserID).Msg("profile update after login failed")
	}

	s.log.Info().Str("user_id", res.UserID).Msg("user signed in")
	return store.User(), nil
}

// Logout clears the session.
func (s *AuthService) Logout(ctx context.Context, store *SessionStore) error {
	user := store.User()
	if err := store.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if user != nil {
		s.log.Info().Str("user_id", user.ID).Msg("user signed out")
	}
	return nil
}

// RefreshProfile re-reads the user record from the backend.
func (s *AuthService) RefreshProfile(ctx context.Context, store *SessionStore) (*domain.User, error) {
	current := store.User()
	if current == nil {
		return nil, domain.ErrUnauthenticated
	}

	profile, err := s.gateway.CurrentUser(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("refresh profile: %w", err)
	}
	if err := store.UpdateUser(ctx, mergeProfile(current, profile)); err != nil {
		return nil, fmt.Errorf("refresh profile: %w", err)
	}
	return store.User(), nil
}

// mergeProfile takes the backend record but keeps identity fields the
// profile endpoint left empty.
func mergeProfile(current, profile *domain.User) *domain.User {
	merged := profile.Clone()
	if current == nil {
		return merged
	}
	if merged.ID == "" {
		merged.ID = current.ID
	}
	if merged.PhoneNumber == "" {
		merged.PhoneNumber = current.PhoneNumber
	}
	if len(merged.Roles) == 0 {
		merged.Roles = append([]domain.Role(nil), current.Roles...)
	}
	if merged.CurrentRole == "" {
		merged.CurrentRole = current.CurrentRole
	}
	if merged.LastUsedRole == "" {
		merged.LastUsedRole = current.LastUsedRole
	}
	return merged
}

func classifyLoginError(err error) error {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			return &credentialsError{apiErr: apiErr}
		}
	}
	return err
}

// credentialsError keeps the server message while matching
// ErrInvalidCredentials.
type credentialsError struct {
	apiErr *domain.APIError
}

func (e *credentialsError) Error() string { return e.apiErr.Error() }

func (e *credentialsError) Is(target error) bool { return target == domain.ErrInvalidCredentials }

func (e *credentialsError) Unwrap() error { return e.apiErr }
