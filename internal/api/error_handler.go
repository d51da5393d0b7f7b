package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/api/middleware"
	"github.com/prbusiness/dashboard/internal/api/view"
	"github.com/prbusiness/dashboard/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"error": "<message>"} for JSON routes and the failure page
//     (reload / go home) for everything else.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if wantsJSON(c) {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}
		if rerr := renderErrorPage(c, code, msg); rerr != nil {
			log.Error().Err(rerr).Msg("failed to render error page")
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrRoleNotHeld):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrSwitchRejected):
		return http.StatusConflict, "role switch rejected"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, "backend unavailable"
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status, apiErr.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func wantsJSON(c echo.Context) bool {
	path := c.Request().URL.Path
	if path == "/api" || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/health") {
		return true
	}
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

func renderErrorPage(c echo.Context, code int, msg string) error {
	locale := middleware.LocaleFrom(c)
	if code == http.StatusForbidden {
		return c.Render(code, view.PageForbidden, view.NewPage(locale, "forbidden.title"))
	}

	page := view.NewPage(locale, "error.title")
	page.Status = code
	switch {
	case code == http.StatusServiceUnavailable:
		page.Banner = page.Msg.T("backend.unavailable")
	case code < http.StatusInternalServerError:
		page.Banner = msg
	}
	return c.Render(code, view.PageFailure, page)
}
