package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/api/view"
	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
	"github.com/prbusiness/dashboard/internal/core/service"
	"github.com/prbusiness/dashboard/internal/infrastructure/db/memory"
)

const testSecret = "test-secret"

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	r, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = r
	return e
}

func sessionOpts(storage ports.StorageProvider) SessionOptions {
	return SessionOptions{
		Secret:  testSecret,
		TTL:     time.Hour,
		Storage: storage,
		Log:     zerolog.Nop(),
	}
}

func signedCookie(t *testing.T, sid string) *http.Cookie {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{SID: sid}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign cookie: %v", err)
	}
	return &http.Cookie{Name: SessionCookie, Value: signed}
}

// signIn persists a session for sid directly through a store.
func signIn(t *testing.T, provider *memory.Provider, sid string, user *domain.User) {
	t.Helper()
	store := service.NewSessionStore(sid, provider.Session(sid), nil, zerolog.Nop())
	if err := store.Login(context.Background(), "access-1", "refresh-1", user); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func creator() *domain.User {
	return &domain.User{ID: "u-1", Roles: []domain.Role{domain.RoleCreator}, CurrentRole: domain.RoleCreator}
}
