package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

// RoleSwitcher changes the active role of a multi-role user.
type RoleSwitcher struct {
	gateway ports.AuthGateway
	log     zerolog.Logger
}

func NewRoleSwitcher(gateway ports.AuthGateway, log zerolog.Logger) *RoleSwitcher {
	return &RoleSwitcher{gateway: gateway, log: log}
}

// Switch makes target the active role. It reports false without contacting
// the backend when target is already active. On any failure the session is
// left exactly as it was.
func (rs *RoleSwitcher) Switch(ctx context.Context, store *SessionStore, target domain.Role) (bool, error) {
	user := store.User()
	if user == nil {
		return false, domain.ErrUnauthenticated
	}

	target = target.Normalize()
	if !user.HasRole(target) {
		return false, fmt.Errorf("switch role %s: %w", target, domain.ErrRoleNotHeld)
	}
	if user.CurrentRole.Equal(target) {
		return false, nil
	}

	res, err := rs.gateway.SwitchRole(ctx, store, target)
	if err != nil {
		rs.log.Warn().Err(err).Str("user_id", user.ID).Str("role", string(target)).Msg("role switch failed")
		return false, fmt.Errorf("switch role %s: %w", target, err)
	}
	if !res.CurrentRole.Equal(target) {
		return false, fmt.Errorf("switch role %s: %w: backend confirmed %q", target, domain.ErrSwitchRejected, res.CurrentRole)
	}

	previous := res.LastUsedRole
	if previous == "" {
		previous = user.CurrentRole
	}
	if err := store.ApplyRoleSwitch(ctx, res.AccessToken, res.CurrentRole, previous); err != nil {
		return false, fmt.Errorf("switch role %s: %w", target, err)
	}

	rs.log.Info().
		Str("user_id", user.ID).
		Str("from", string(user.CurrentRole)).
		Str("to", string(target)).
		Msg("role switched")
	return true, nil
}
