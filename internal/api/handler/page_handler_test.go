package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/api/middleware"
	"github.com/prbusiness/dashboard/internal/core/access"
	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/service"
)

func pageServer(t *testing.T, switcher RoleSwitcher) *testServer {
	t.Helper()
	s := newTestServer(t)
	policy := access.Default(access.ModeUnion)
	auth := NewAuthHandler(&stubAuthService{loginFn: loginAs(multiRole())}, zerolog.Nop())
	pages := NewPageHandler(policy, switcher, zerolog.Nop())
	apis := NewAPIHandler(policy, nil)

	s.e.POST("/login", auth.Login, s.session()...)
	page := s.guarded(middleware.GuardPage)
	s.e.GET("/dashboard", pages.Section, page...)
	s.e.GET("/tasks", pages.Section, page...)
	s.e.POST("/roles/switch", pages.SwitchRole, page...)
	s.e.GET("/api/navigation", apis.Navigation, s.guarded(middleware.GuardAPI)...)
	s.e.GET("/api/session/events", apis.SessionEvents, s.guarded(middleware.GuardAPI)...)
	s.e.GET("/api/roles", apis.Roles)

	s.do(http.MethodPost, "/login", credentials("13800000003", "demo1234"))
	return s
}

func TestPageHandler_SectionRendersShell(t *testing.T) {
	s := pageServer(t, nil)

	rec := s.do(http.MethodGet, "/tasks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Task Hall", "Mia", `action="/roles/switch"`, `href="/staff"`} {
		if !strings.Contains(body, want) {
			t.Errorf("shell is missing %q", want)
		}
	}
	if strings.Contains(body, `href="/withdrawals/review"`) {
		t.Error("withdrawal review must not be visible to this user")
	}
}

func TestPageHandler_SwitchRole_Success(t *testing.T) {
	var got domain.Role
	s := pageServer(t, &stubSwitcher{switchFn: func(ctx context.Context, store *service.SessionStore, target domain.Role) (bool, error) {
		got = target
		return true, store.ApplyRoleSwitch(ctx, "access-2", target, domain.RoleMerchantAdmin)
	}})

	rec := s.do(http.MethodPost, "/roles/switch", url.Values{"role": {"CREATOR"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/dashboard" {
		t.Fatalf("expected 303 to /dashboard, got %d", rec.Code)
	}
	if got != domain.RoleCreator {
		t.Errorf("unexpected target %s", got)
	}

	rec = s.do(http.MethodGet, "/api/navigation", nil)
	var nav navigationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &nav); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if nav.CurrentRole != domain.RoleCreator {
		t.Errorf("expected the switch to persist across requests, got %s", nav.CurrentRole)
	}
}

func TestPageHandler_SwitchRole_NotHeldShowsBanner(t *testing.T) {
	s := pageServer(t, &stubSwitcher{switchFn: func(context.Context, *service.SessionStore, domain.Role) (bool, error) {
		return false, domain.ErrRoleNotHeld
	}})

	rec := s.do(http.MethodPost, "/roles/switch", url.Values{"role": {"SUPER_ADMIN"}})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Could not switch role") {
		t.Error("expected the fallback banner")
	}
}

func TestPageHandler_SwitchRole_SessionLossRedirects(t *testing.T) {
	s := pageServer(t, &stubSwitcher{switchFn: func(ctx context.Context, store *service.SessionStore, _ domain.Role) (bool, error) {
		return false, fmt.Errorf("switch role: %w", domain.ErrSessionExpired)
	}})

	rec := s.do(http.MethodPost, "/roles/switch", url.Values{"role": {"CREATOR"}})
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected 302 to /login, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/dashboard", nil); rec.Code != http.StatusFound {
		t.Errorf("expected session to be gone, got %d", rec.Code)
	}
}

func TestAPIHandler_Navigation(t *testing.T) {
	s := pageServer(t, nil)

	rec := s.do(http.MethodGet, "/api/navigation", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var nav navigationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &nav); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if nav.Mode != access.ModeUnion || len(nav.Roles) != 2 {
		t.Errorf("unexpected navigation: %+v", nav)
	}
	want := []string{"/dashboard", "/staff", "/permissions", "/campaigns", "/tasks", "/my-tasks", "/recharge", "/credits", "/withdrawals"}
	if len(nav.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), nav.Entries)
	}
	for i, e := range nav.Entries {
		if e.Path != want[i] {
			t.Errorf("entry %d: got %s, want %s", i, e.Path, want[i])
		}
	}
}

func TestAPIHandler_SessionEvents(t *testing.T) {
	s := pageServer(t, nil)

	rec := s.do(http.MethodGet, "/api/session/events", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"events":[]`) {
		t.Fatalf("expected empty event list, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAPIHandler_Roles(t *testing.T) {
	s := pageServer(t, nil)

	rec := s.do(http.MethodGet, "/api/roles", nil)
	var roles []domain.RoleInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &roles); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(roles) != 7 || roles[0].Role != domain.RoleSuperAdmin {
		t.Errorf("unexpected registry: %+v", roles)
	}
}
