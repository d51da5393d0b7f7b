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
	"github.com/prbusiness/dashboard/internal/core/access"
	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/service"
)

// RoleSwitcher is the part of service.RoleSwitcher the handlers use.
type RoleSwitcher interface {
	Switch(ctx context.Context, store *service.SessionStore, target domain.Role) (bool, error)
}

// PageHandler renders the authenticated shell and handles role switches.
type PageHandler struct {
	policy   *access.Policy
	switcher RoleSwitcher
	log      zerolog.Logger
}

func NewPageHandler(policy *access.Policy, switcher RoleSwitcher, log zerolog.Logger) *PageHandler {
	return &PageHandler{policy: policy, switcher: switcher, log: log}
}

// Root handles GET /.
func (h *PageHandler) Root(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Section renders the shell for the requested table path.
func (h *PageHandler) Section(c echo.Context) error {
	path := c.Request().URL.Path
	section := view.Section{Path: path, Dashboard: path == "/dashboard"}
	if item, ok := h.policy.Lookup(path); ok {
		section.Label = item.Label
	}
	return h.renderShell(c, http.StatusOK, section, "")
}

// SwitchRole handles POST /roles/switch and reloads the dashboard on success.
func (h *PageHandler) SwitchRole(c echo.Context) error {
	store, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	msg := view.Catalog(middleware.LocaleFrom(c))

	var form switchRoleForm
	if err := c.Bind(&form); err != nil {
		return h.renderDashboard(c, http.StatusBadRequest, msg.T("role.switch_failed"))
	}
	if err := c.Validate(&form); err != nil {
		return h.renderDashboard(c, http.StatusUnprocessableEntity, msg.T("role.switch_failed"))
	}

	switched, err := h.switcher.Switch(c.Request().Context(), store, domain.Role(form.Role))
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrUnauthenticated) {
			return err
		}
		status, result := switchFailure(err)
		metrics.RoleSwitchesTotal.WithLabelValues(result).Inc()
		h.log.Warn().Err(err).Str("session_id", store.ID()).Str("target", form.Role).Msg("role switch failed")
		return h.renderDashboard(c, status, banner(err, msg, "role.switch_failed"))
	}

	result := "noop"
	if switched {
		result = "switched"
	}
	metrics.RoleSwitchesTotal.WithLabelValues(result).Inc()
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func switchFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRoleNotHeld):
		return http.StatusForbidden, "not_held"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrSwitchRejected):
		return http.StatusConflict, "rejected"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, "error"
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return http.StatusConflict, "rejected"
	}
	return http.StatusInternalServerError, "error"
}

func (h *PageHandler) renderDashboard(c echo.Context, status int, bannerText string) error {
	item, _ := h.policy.Lookup("/dashboard")
	return h.renderShell(c, status, view.Section{Path: "/dashboard", Label: item.Label, Dashboard: true}, bannerText)
}

func (h *PageHandler) renderShell(c echo.Context, status int, section view.Section, bannerText string) error {
	store, user, err := ctxSession(c)
	if err != nil {
		return err
	}
	// The store may be newer than the guard's snapshot.
	if u := store.User(); u != nil {
		user = u
	}

	page := view.NewPage(middleware.LocaleFrom(c), "app.name")
	if section.Label != "" {
		page.Title = section.Label
	}
	page.User = user
	page.Nav = view.BuildNav(h.policy, user, section.Path)
	page.Section = section
	page.Banner = bannerText
	page.Status = status
	return c.Render(status, view.PageShell, page)
}
