package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/prbusiness/dashboard/internal/api/view"
)

const ctxLocale = "locale"

// Locale picks the UI language from Accept-Language, defaulting to fallback.
func Locale(fallback string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ctxLocale, view.Negotiate(c.Request().Header.Get("Accept-Language"), fallback))
			return next(c)
		}
	}
}

// LocaleFrom returns the negotiated locale, "en" when Locale did not run.
func LocaleFrom(c echo.Context) string {
	if l, ok := c.Get(ctxLocale).(string); ok && l != "" {
		return l
	}
	return "en"
}
