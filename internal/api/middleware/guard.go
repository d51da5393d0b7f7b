package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/api/metrics"
	"github.com/prbusiness/dashboard/internal/api/view"
	"github.com/prbusiness/dashboard/internal/core/domain"
)

// GuardMode selects how the guard answers requests it does not admit.
type GuardMode int

const (
	// GuardPage renders the loading page or redirects to /login.
	GuardPage GuardMode = iota
	// GuardAPI answers with JSON status codes.
	GuardAPI
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// Guard admits only authenticated sessions. It must run after Session.
func Guard(mode GuardMode, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := StoreFrom(c)
			if store == nil {
				return errors.New("guard: no session store in context")
			}

			switch store.State() {
			case domain.StateChecking:
				metrics.GuardDecisionsTotal.WithLabelValues("checking").Inc()
				return checking(c, mode)
			case domain.StateUnauthenticated:
				metrics.GuardDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				if err := store.Logout(c.Request().Context()); err != nil {
					log.Warn().Err(err).Str("session_id", store.ID()).Msg("failed to clear session")
				}
				return deny(c, mode)
			}

			metrics.GuardDecisionsTotal.WithLabelValues("authenticated").Inc()
			c.Set(ctxUser, store.User())

			err := next(c)
			if err == nil || !isSessionLoss(err) || c.Response().Committed {
				return err
			}

			// A 401 survived the refresh flow downstream.
			metrics.GuardDecisionsTotal.WithLabelValues("expired").Inc()
			log.Info().Err(err).Str("session_id", store.ID()).Msg("session lost, signing out")
			if lerr := store.Logout(c.Request().Context()); lerr != nil {
				log.Warn().Err(lerr).Str("session_id", store.ID()).Msg("failed to clear session")
			}
			return deny(c, mode)
		}
	}
}

func isSessionLoss(err error) bool {
	return errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrUnauthenticated)
}

func checking(c echo.Context, mode GuardMode) error {
	c.Response().Header().Set("Cache-Control", "no-store")
	if mode == GuardAPI {
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session is still loading"})
	}
	page := view.NewPage(LocaleFrom(c), "loading.title")
	page.RefreshAfter = 1
	return c.Render(http.StatusOK, view.PageLoading, page)
}

func deny(c echo.Context, mode GuardMode) error {
	if mode == GuardAPI {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": domain.ErrUnauthenticated.Error()})
	}
	return c.Redirect(http.StatusFound, LoginPath)
}
