package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

// SessionStore is the single source of truth for who is signed in to one
// browser session. Every mutation is written through to storage before it is
// applied in memory, so a reload right after any call observes the new state.
type SessionStore struct {
	mu       sync.RWMutex
	sid      string
	storage  ports.SessionStorage
	events   ports.SessionEventPublisher
	log      zerolog.Logger
	now      func() time.Time
	restored bool
	session  domain.Session
}

// NewSessionStore returns an unrestored store. events may be nil.
func NewSessionStore(sid string, storage ports.SessionStorage, events ports.SessionEventPublisher, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		sid:     sid,
		storage: storage,
		events:  events,
		log:     log.With().Str("session_id", sid).Logger(),
		now:     time.Now,
	}
}

// ID returns the browser session id the store is bound to.
func (s *SessionStore) ID() string { return s.sid }

// Restore loads the persisted session. Missing or malformed data leaves the
// store unauthenticated. A storage failure leaves it checking, so the caller
// can try again later; the persisted keys are never touched.
func (s *SessionStore) Restore(ctx context.Context) {
	sess, err := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}

	switch {
	case err == nil:
		s.restored = true
		s.session = *sess
	case errors.Is(err, domain.ErrUnauthenticated):
		s.restored = true
	case errors.Is(err, domain.ErrMalformedSession):
		s.restored = true
		s.log.Warn().Err(err).Msg("discarding persisted session")
	default:
		s.restored = false
		s.log.Warn().Err(err).Msg("session storage unavailable")
	}
}

func (s *SessionStore) load(ctx context.Context) (*domain.Session, error) {
	access, ok, err := s.storage.Get(ctx, ports.KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("read access token: %w", err)
	}
	if !ok || access == "" {
		return nil, domain.ErrUnauthenticated
	}

	raw, ok, err := s.storage.Get(ctx, ports.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	if !ok || raw == "" {
		return nil, domain.ErrUnauthenticated
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSession, err)
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSession, err)
	}

	refresh, _, err := s.storage.Get(ctx, ports.KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("read refresh token: %w", err)
	}

	return &domain.Session{AccessToken: access, RefreshToken: refresh, User: &user}, nil
}

// Login replaces any prior session with the given tokens and user.
func (s *SessionStore) Login(ctx context.Context, accessToken, refreshToken string, user *domain.User) error {
	if accessToken == "" {
		return fmt.Errorf("session login: %w: empty access token", domain.ErrMalformedSession)
	}
	u, raw, err := prepareUser(user)
	if err != nil {
		return fmt.Errorf("session login: %w", err)
	}

	s.mu.Lock()
	err = s.storage.SetMany(ctx, map[string]string{
		ports.KeyAccessToken:  accessToken,
		ports.KeyRefreshToken: refreshToken,
		ports.KeyUser:         raw,
	})
	if err == nil {
		s.restored = true
		s.session = domain.Session{AccessToken: accessToken, RefreshToken: refreshToken, User: u}
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("session login: %w", err)
	}
	s.publish(domain.EventLogin, u, "")
	return nil
}

// Logout clears persisted and in-memory state. Memory is only cleared once
// the delete has landed. Calling it on a signed-out store does nothing
// observable.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.session.User
	wasAuthenticated := s.session.Authenticated()
	err := s.storage.Delete(ctx, ports.KeyAccessToken, ports.KeyRefreshToken, ports.KeyUser)
	if err == nil {
		s.session = domain.Session{}
		s.restored = true
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("session logout: %w", err)
	}
	if wasAuthenticated {
		s.publish(domain.EventLogout, prev, "")
	}
	return nil
}

// Expire is Logout under the name the backend client knows it by.
func (s *SessionStore) Expire(ctx context.Context) error {
	return s.Logout(ctx)
}

// UpdateUser replaces the cached user record without touching the tokens.
func (s *SessionStore) UpdateUser(ctx context.Context, user *domain.User) error {
	u, raw, err := prepareUser(user)
	if err != nil {
		return fmt.Errorf("session update user: %w", err)
	}

	s.mu.Lock()
	if !s.session.Authenticated() {
		s.mu.Unlock()
		return fmt.Errorf("session update user: %w", domain.ErrUnauthenticated)
	}
	err = s.storage.SetMany(ctx, map[string]string{ports.KeyUser: raw})
	if err == nil {
		s.session.User = u
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("session update user: %w", err)
	}
	s.publish(domain.EventUserUpdated, u, "")
	return nil
}

// RotateAccessToken stores a refreshed access token.
func (s *SessionStore) RotateAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("session rotate token: %w: empty access token", domain.ErrMalformedSession)
	}

	s.mu.Lock()
	if !s.session.Authenticated() {
		s.mu.Unlock()
		return fmt.Errorf("session rotate token: %w", domain.ErrUnauthenticated)
	}
	err := s.storage.SetMany(ctx, map[string]string{ports.KeyAccessToken: token})
	if err == nil {
		s.session.AccessToken = token
	}
	u := s.session.User
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("session rotate token: %w", err)
	}
	s.publish(domain.EventTokenRotated, u, "")
	return nil
}

// ApplyRoleSwitch writes the new token together with the user's active and
// previous role. Either both land or neither does.
func (s *SessionStore) ApplyRoleSwitch(ctx context.Context, token string, current, lastUsed domain.Role) error {
	if token == "" {
		return fmt.Errorf("apply role switch: %w: empty access token", domain.ErrSwitchRejected)
	}

	s.mu.Lock()
	if !s.session.Authenticated() {
		s.mu.Unlock()
		return fmt.Errorf("apply role switch: %w", domain.ErrUnauthenticated)
	}

	u := s.session.User.Clone()
	u.CurrentRole = current.Normalize()
	u.LastUsedRole = lastUsed.Normalize()
	if err := u.Validate(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("apply role switch: %w: %v", domain.ErrSwitchRejected, err)
	}
	raw, err := json.Marshal(u)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("apply role switch: %w", err)
	}

	err = s.storage.SetMany(ctx, map[string]string{
		ports.KeyAccessToken: token,
		ports.KeyUser:        string(raw),
	})
	if err == nil {
		s.session.AccessToken = token
		s.session.User = u
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("apply role switch: %w", err)
	}
	s.publish(domain.EventRoleSwitched, u, u.LastUsedRole)
	return nil
}

// State reports Checking until Restore (or a mutation) has run.
func (s *SessionStore) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case !s.restored:
		return domain.StateChecking
	case s.session.Authenticated():
		return domain.StateAuthenticated
	}
	return domain.StateUnauthenticated
}

// Authenticated is shorthand for State() == StateAuthenticated.
func (s *SessionStore) Authenticated() bool {
	return s.State() == domain.StateAuthenticated
}

// AccessToken returns the current access token.
func (s *SessionStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken
}

// RefreshToken returns the current refresh token.
func (s *SessionStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.RefreshToken
}

// User returns a copy of the cached user, or nil when signed out.
func (s *SessionStore) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User.Clone()
}

// Session returns a copy of the whole session.
func (s *SessionStore) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{
		AccessToken:  s.session.AccessToken,
		RefreshToken: s.session.RefreshToken,
		User:         s.session.User.Clone(),
	}
}

func (s *SessionStore) publish(kind domain.SessionEventKind, u *domain.User, previous domain.Role) {
	if s.events == nil {
		return
	}
	ev := domain.SessionEvent{SessionID: s.sid, Kind: kind, PreviousRole: previous, At: s.now().UTC()}
	if u != nil {
		ev.UserID = u.ID
		ev.Role = u.CurrentRole
	}
	s.events.Publish(ev)
}

func prepareUser(user *domain.User) (*domain.User, string, error) {
	if user == nil {
		return nil, "", domain.ErrInvalidUser
	}
	u := user.Clone()
	u.Normalize()
	if err := u.Validate(); err != nil {
		return nil, "", err
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, "", err
	}
	return u, string(raw), nil
}
