package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/api/middleware"
	"github.com/prbusiness/dashboard/internal/api/view"
	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/service"
	"github.com/prbusiness/dashboard/internal/infrastructure/db/memory"
)

type stubAuthService struct {
	loginFn   func(ctx context.Context, store *service.SessionStore, phone, password string) (*domain.User, error)
	refreshFn func(ctx context.Context, store *service.SessionStore) (*domain.User, error)
	logouts   int
}

func (s *stubAuthService) Login(ctx context.Context, store *service.SessionStore, phone, password string) (*domain.User, error) {
	return s.loginFn(ctx, store, phone, password)
}

func (s *stubAuthService) Logout(ctx context.Context, store *service.SessionStore) error {
	s.logouts++
	return store.Logout(ctx)
}

func (s *stubAuthService) RefreshProfile(ctx context.Context, store *service.SessionStore) (*domain.User, error) {
	return s.refreshFn(ctx, store)
}

type stubSwitcher struct {
	switchFn func(ctx context.Context, store *service.SessionStore, target domain.Role) (bool, error)
}

func (s *stubSwitcher) Switch(ctx context.Context, store *service.SessionStore, target domain.Role) (bool, error) {
	return s.switchFn(ctx, store, target)
}

// testServer wires handlers behind the real session middleware and an
// in-memory session storage.
type testServer struct {
	e        *echo.Echo
	provider *memory.Provider
	cookie   *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	e := echo.New()
	r, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = r
	e.Validator = NewValidator()
	return &testServer{e: e, provider: memory.NewProvider(time.Hour)}
}

func (s *testServer) session() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.Locale("en"),
		middleware.Session(middleware.SessionOptions{Secret: "secret", TTL: time.Hour, Storage: s.provider, Log: zerolog.Nop()}),
	}
}

func (s *testServer) guarded(mode middleware.GuardMode) []echo.MiddlewareFunc {
	return append(s.session(), middleware.Guard(mode, zerolog.Nop()))
}

// do sends a request, carrying the session cookie between calls.
func (s *testServer) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			s.cookie = c
		}
	}
	return rec
}

func multiRole() *domain.User {
	return &domain.User{
		ID:          "u-1",
		Nickname:    "Mia",
		Roles:       []domain.Role{domain.RoleMerchantAdmin, domain.RoleCreator},
		CurrentRole: domain.RoleMerchantAdmin,
	}
}

func loginAs(user *domain.User) func(ctx context.Context, store *service.SessionStore, phone, password string) (*domain.User, error) {
	return func(ctx context.Context, store *service.SessionStore, phone, password string) (*domain.User, error) {
		if err := store.Login(ctx, "access-1", "refresh-1", user); err != nil {
			return nil, err
		}
		return user, nil
	}
}
