package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/prbusiness/dashboard/internal/core/access"
	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

const (
	defaultEventsLimit = 20
	maxEventsLimit     = 100
)

// APIHandler serves the JSON read models of the session.
type APIHandler struct {
	policy *access.Policy
	events ports.SessionEventRepository
}

// NewAPIHandler returns an APIHandler. events may be nil when the audit
// trail is disabled.
func NewAPIHandler(policy *access.Policy, events ports.SessionEventRepository) *APIHandler {
	return &APIHandler{policy: policy, events: events}
}

// Navigation returns the entries visible to the signed-in user.
//
// @Summary      Visible navigation
// @Tags         session
// @Produce      json
// @Success      200  {object}  navigationResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/navigation [get]
func (h *APIHandler) Navigation(c echo.Context) error {
	_, user, err := ctxSession(c)
	if err != nil {
		return err
	}

	held := user.RoleSet().Sorted()
	roles := make([]domain.RoleInfo, 0, len(held))
	for _, r := range held {
		roles = append(roles, r.Info())
	}

	return c.JSON(http.StatusOK, navigationResponse{
		Mode:        h.policy.Mode(),
		CurrentRole: user.CurrentRole,
		Roles:       roles,
		Entries:     h.policy.Navigation(user),
	})
}

// Roles lists the role registry.
//
// @Summary      Role registry
// @Tags         roles
// @Produce      json
// @Success      200  {array}  domain.RoleInfo
// @Router       /api/roles [get]
func (h *APIHandler) Roles(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.AllRoles())
}

// SessionEvents lists the signed-in user's recent session events.
//
// @Summary      Recent session events
// @Tags         session
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of events (1-100)"
// @Success      200    {object}  sessionEventsResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Router       /api/session/events [get]
func (h *APIHandler) SessionEvents(c echo.Context) error {
	_, user, err := ctxSession(c)
	if err != nil {
		return err
	}

	limit := defaultEventsLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxEventsLimit {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
		}
		limit = n
	}

	if h.events == nil {
		return c.JSON(http.StatusOK, sessionEventsResponse{Events: []domain.SessionEvent{}})
	}
	events, err := h.events.ListByUser(c.Request().Context(), user.ID, limit)
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.SessionEvent{}
	}
	return c.JSON(http.StatusOK, sessionEventsResponse{Events: events})
}
