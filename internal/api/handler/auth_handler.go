package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/api/metrics"
	"github.com/prbusiness/dashboard/internal/api/middleware"
	"github.com/prbusiness/dashboard/internal/api/view"
	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/service"
)

// AuthService is the part of service.AuthService the handlers use.
type AuthService interface {
	Login(ctx context.Context, store *service.SessionStore, phoneNumber, password string) (*domain.User, error)
	Logout(ctx context.Context, store *service.SessionStore) error
	RefreshProfile(ctx context.Context, store *service.SessionStore) (*domain.User, error)
}

type AuthHandler struct {
	auth AuthService
	log  zerolog.Logger
}

func NewAuthHandler(auth AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if store := middleware.StoreFrom(c); store != nil && store.Authenticated() {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return h.renderLogin(c, http.StatusOK, "", "")
}

// Login handles POST /login.
func (h *AuthHandler) Login(c echo.Context) error {
	store := middleware.StoreFrom(c)
	if store == nil {
		return errors.New("handler: no session store in context")
	}
	msg := view.Catalog(middleware.LocaleFrom(c))

	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, form.PhoneNumber, msg.T("login.invalid"))
	}
	if err := c.Validate(&form); err != nil {
		h.log.Debug().Err(err).Msg("login form rejected")
		return h.renderLogin(c, http.StatusUnprocessableEntity, form.PhoneNumber, msg.T("login.invalid"))
	}

	user, err := h.auth.Login(c.Request().Context(), store, form.PhoneNumber, form.Password)
	if err != nil {
		status, fallback, result := http.StatusUnauthorized, "login.failed", "invalid_credentials"
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			status, fallback, result = http.StatusServiceUnavailable, "backend.unavailable", "error"
			h.log.Error().Err(err).Msg("login failed")
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		return h.renderLogin(c, status, form.PhoneNumber, banner(err, msg, fallback))
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.log.Info().Str("user_id", user.ID).Str("session_id", store.ID()).Msg("signed in")
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	if store := middleware.StoreFrom(c); store != nil {
		if err := h.auth.Logout(c.Request().Context(), store); err != nil {
			return err
		}
	}
	return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// Me returns the signed-in user after refreshing it from the backend.
//
// @Summary      Current user
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /api/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	store, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	user, err := h.auth.RefreshProfile(c.Request().Context(), store)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) renderLogin(c echo.Context, status int, phone, bannerText string) error {
	page := view.NewPage(middleware.LocaleFrom(c), "login.title")
	page.PhoneNumber = phone
	page.Banner = bannerText
	return c.Render(status, view.PageLogin, page)
}

// banner prefers the server-provided message and falls back to the
// localized text under fallbackKey.
func banner(err error, msg view.Messages, fallbackKey string) string {
	if s := domain.ServerMessage(err); s != "" {
		return s
	}
	return msg.T(fallbackKey)
}
