package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
	"github.com/prbusiness/dashboard/internal/core/service"
)

// SessionCookie carries the signed browser session id.
const SessionCookie = "prb_session"

const (
	ctxSessionStore = "session_store"
	ctxUser         = "user"

	defaultRestoreWait = 2 * time.Second
	restoreBudget      = 10 * time.Second
)

// SessionOptions configures the Session middleware.
type SessionOptions struct {
	Secret  string
	TTL     time.Duration
	Secure  bool
	Storage ports.StorageProvider
	// Events may be nil.
	Events ports.SessionEventPublisher
	// RestoreWait bounds how long a request waits for the persisted session
	// before the guard answers with the loading page.
	RestoreWait time.Duration
	Log         zerolog.Logger
}

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Session binds a SessionStore to the request. The browser is identified by
// a signed cookie; a missing, tampered or expired cookie starts a new
// session id.
func Session(opts SessionOptions) echo.MiddlewareFunc {
	if opts.RestoreWait <= 0 {
		opts.RestoreWait = defaultRestoreWait
	}
	secret := []byte(opts.Secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, ok := readSessionID(c, secret)
			if !ok {
				sid = uuid.NewString()
				if err := writeSessionCookie(c, secret, sid, opts.TTL, opts.Secure); err != nil {
					return err
				}
			}

			store := service.NewSessionStore(sid, opts.Storage.Session(sid), opts.Events, opts.Log)
			restore(c.Request().Context(), store, opts.RestoreWait)

			c.Set(ctxSessionStore, store)
			return next(c)
		}
	}
}

func readSessionID(c echo.Context, secret []byte) (string, bool) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid || claims.SID == "" {
		return "", false
	}
	return claims.SID, true
}

func writeSessionCookie(c echo.Context, secret []byte, sid string, ttl time.Duration, secure bool) error {
	now := time.Now()
	claims := sessionClaims{SID: sid, RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now)}}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}
	c.SetCookie(cookie)
	return nil
}

// restore runs store.Restore but stops waiting after wait. A store still
// restoring when the wait ends reports StateChecking.
func restore(ctx context.Context, store *service.SessionStore, wait time.Duration) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreBudget)
		defer cancel()
		store.Restore(rctx)
	}()

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
	}
}

// StoreFrom returns the request's session store, or nil outside Session.
func StoreFrom(c echo.Context) *service.SessionStore {
	s, _ := c.Get(ctxSessionStore).(*service.SessionStore)
	return s
}

// UserFrom returns the user the Guard admitted, or nil.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(ctxUser).(*domain.User)
	return u
}
