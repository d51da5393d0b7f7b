package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory storage with failure injection
// ---------------------------------------------------------------------------

type stubStorage struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	delErr  error
	writes  int
	deletes int
}

func newStubStorage() *stubStorage {
	return &stubStorage{data: make(map[string]string)}
}

func (s *stubStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubStorage) SetMany(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	for k, v := range values {
		s.data[k] = v
	}
	s.writes++
	return nil
}

func (s *stubStorage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	s.deletes++
	return nil
}

// ---------------------------------------------------------------------------
// Event recorder
// ---------------------------------------------------------------------------

type recordingPublisher struct {
	events []domain.SessionEvent
}

func (p *recordingPublisher) Publish(ev domain.SessionEvent) {
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) kinds() []domain.SessionEventKind {
	out := make([]domain.SessionEventKind, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

// ---------------------------------------------------------------------------
// Gateway stub
// ---------------------------------------------------------------------------

type stubGateway struct {
	loginFn   func(ctx context.Context, phone, password string) (*ports.LoginResult, error)
	refreshFn func(ctx context.Context, refreshToken string) (*ports.RefreshResult, error)
	switchFn  func(ctx context.Context, tokens ports.TokenSource, role domain.Role) (*ports.SwitchRoleResult, error)
	meFn      func(ctx context.Context, tokens ports.TokenSource) (*domain.User, error)

	switchCalls int
}

func (g *stubGateway) PasswordLogin(ctx context.Context, phone, password string) (*ports.LoginResult, error) {
	return g.loginFn(ctx, phone, password)
}

func (g *stubGateway) Refresh(ctx context.Context, refreshToken string) (*ports.RefreshResult, error) {
	if g.refreshFn == nil {
		return nil, errors.New("refresh not stubbed")
	}
	return g.refreshFn(ctx, refreshToken)
}

func (g *stubGateway) SwitchRole(ctx context.Context, tokens ports.TokenSource, role domain.Role) (*ports.SwitchRoleResult, error) {
	g.switchCalls++
	return g.switchFn(ctx, tokens, role)
}

func (g *stubGateway) CurrentUser(ctx context.Context, tokens ports.TokenSource) (*domain.User, error) {
	if g.meFn == nil {
		return nil, errors.New("me not stubbed")
	}
	return g.meFn(ctx, tokens)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newStore(storage ports.SessionStorage, pub ports.SessionEventPublisher) *SessionStore {
	return NewSessionStore("sid-1", storage, pub, zerolog.Nop())
}

func multiRoleUser() *domain.User {
	return &domain.User{
		ID:          "u-1",
		Nickname:    "Mia",
		Roles:       []domain.Role{domain.RoleMerchantAdmin, domain.RoleCreator},
		CurrentRole: domain.RoleMerchantAdmin,
	}
}

func signedInStore(t interface{ Fatalf(string, ...any) }, storage ports.SessionStorage) *SessionStore {
	store := newStore(storage, nil)
	if err := store.Login(context.Background(), "access-1", "refresh-1", multiRoleUser()); err != nil {
		t.Fatalf("login: %v", err)
	}
	return store
}
