package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/prbusiness/dashboard/internal/core/access"
	"github.com/prbusiness/dashboard/internal/core/domain"
)

// Permit rejects requests whose path the user's roles do not unlock. It must
// run after Guard.
func Permit(policy *access.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if !policy.PermitsUser(UserFrom(c), path) {
				return fmt.Errorf("%w: %s", domain.ErrForbidden, path)
			}
			return next(c)
		}
	}
}
