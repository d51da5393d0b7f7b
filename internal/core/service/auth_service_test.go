package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

func loginOK(_ context.Context, phone, password string) (*ports.LoginResult, error) {
	return &ports.LoginResult{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		UserID:       "u-1",
		Roles:        []domain.Role{"merchant_admin", "creator"},
		CurrentRole:  "merchant_admin",
		ExpiresIn:    3600,
	}, nil
}

func TestAuthService_Login_Success(t *testing.T) {
	gw := &stubGateway{
		loginFn: loginOK,
		meFn: func(_ context.Context, tokens ports.TokenSource) (*domain.User, error) {
			if tokens.AccessToken() != "access-1" {
				t.Fatalf("profile fetch must use the new token, got %q", tokens.AccessToken())
			}
			return &domain.User{ID: "u-1", Nickname: "Mia", Roles: []domain.Role{"MERCHANT_ADMIN", "CREATOR"}, CurrentRole: "MERCHANT_ADMIN"}, nil
		},
	}
	svc := NewAuthService(gw, zerolog.Nop())
	store := newStore(newStubStorage(), nil)
	store.Restore(context.Background())

	user, err := svc.Login(context.Background(), store, "13800000000", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Nickname != "Mia" || user.PhoneNumber != "13800000000" {
		t.Fatalf("profile not merged: %+v", user)
	}
	if user.CurrentRole != domain.RoleMerchantAdmin || len(user.Roles) != 2 {
		t.Fatalf("roles not normalized: %+v", user)
	}
	if !store.Authenticated() || store.RefreshToken() != "refresh-1" {
		t.Fatalf("session not created")
	}
}

func TestAuthService_Login_ProfileFailureKeepsSession(t *testing.T) {
	gw := &stubGateway{
		loginFn: loginOK,
		meFn: func(context.Context, ports.TokenSource) (*domain.User, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := NewAuthService(gw, zerolog.Nop())
	store := newStore(newStubStorage(), nil)

	user, err := svc.Login(context.Background(), store, "13800000000", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "u-1" || !store.Authenticated() {
		t.Fatalf("expected minimal session, got %+v", user)
	}
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	gw := &stubGateway{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, &domain.APIError{Status: 401, Message: "wrong password"}
		},
	}
	svc := NewAuthService(gw, zerolog.Nop())
	store := newStore(newStubStorage(), nil)

	_, err := svc.Login(context.Background(), store, "13800000000", "bad")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if domain.ServerMessage(err) != "wrong password" {
		t.Fatalf("server message lost: %v", err)
	}
	if store.Authenticated() {
		t.Fatalf("session must not be created")
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	svc := NewAuthService(&stubGateway{}, zerolog.Nop())
	store := newStore(newStubStorage(), nil)
	if _, err := svc.Login(context.Background(), store, "", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_BackendDown(t *testing.T) {
	gw := &stubGateway{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrBackendUnavailable
		},
	}
	svc := NewAuthService(gw, zerolog.Nop())
	_, err := svc.Login(context.Background(), newStore(newStubStorage(), nil), "1", "2")
	if !errors.Is(err, domain.ErrBackendUnavailable) || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrBackendUnavailable only, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	storage := newStubStorage()
	store := signedInStore(t, storage)
	svc := NewAuthService(&stubGateway{}, zerolog.Nop())

	if err := svc.Logout(context.Background(), store); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.Authenticated() || len(storage.data) != 0 {
		t.Fatalf("session not cleared")
	}
}

func TestAuthService_RefreshProfile(t *testing.T) {
	store := signedInStore(t, newStubStorage())
	gw := &stubGateway{
		meFn: func(context.Context, ports.TokenSource) (*domain.User, error) {
			return &domain.User{Nickname: "Renamed"}, nil
		},
	}
	svc := NewAuthService(gw, zerolog.Nop())

	user, err := svc.RefreshProfile(context.Background(), store)
	if err != nil {
		t.Fatalf("refresh profile: %v", err)
	}
	if user.Nickname != "Renamed" || user.ID != "u-1" || user.CurrentRole != domain.RoleMerchantAdmin {
		t.Fatalf("unexpected merged user: %+v", user)
	}
}

func TestAuthService_RefreshProfile_SignedOut(t *testing.T) {
	store := newStore(newStubStorage(), nil)
	store.Restore(context.Background())
	svc := NewAuthService(&stubGateway{}, zerolog.Nop())
	if _, err := svc.RefreshProfile(context.Background(), store); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
