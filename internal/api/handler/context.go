package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/prbusiness/dashboard/internal/api/middleware"
	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/service"
)

// ctxSession returns the request's session store and the user the guard
// admitted. A missing store means the Session middleware was not mounted;
// a missing user means the route is not guarded.
func ctxSession(c echo.Context) (*service.SessionStore, *domain.User, error) {
	store := middleware.StoreFrom(c)
	if store == nil {
		return nil, nil, errors.New("handler: no session store in context")
	}
	user := middleware.UserFrom(c)
	if user == nil {
		return store, nil, domain.ErrUnauthenticated
	}
	return store, user, nil
}
