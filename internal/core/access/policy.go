// Package access maps held roles to visible navigation and permitted routes.
// It is the only place in the code base that inspects role membership for
// UI purposes; views ask it whether an entry is visible and nothing else.
package access

import (
	"fmt"
	"strings"

	"github.com/prbusiness/dashboard/internal/core/domain"
)

// Mode selects which roles feed the evaluation.
type Mode string

const (
	// ModeUnion shows the union of every menu the held roles unlock.
	ModeUnion Mode = "union"
	// ModeActiveRole only considers the active role; other menus appear
	// after an explicit role switch.
	ModeActiveRole Mode = "active_role"
)

// ParseMode accepts the values of NAV_POLICY. Empty means union.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeUnion:
		return ModeUnion, nil
	case ModeActiveRole:
		return ModeActiveRole, nil
	}
	return "", fmt.Errorf("access: unknown navigation mode %q", s)
}

// Predicate decides visibility from the held role set.
type Predicate func(domain.RoleSet) bool

// Always is satisfied by every role set, including the empty one.
func Always() Predicate {
	return func(domain.RoleSet) bool { return true }
}

// AnyOf is satisfied when at least one of roles is held.
func AnyOf(roles ...domain.Role) Predicate {
	return func(s domain.RoleSet) bool { return s.HasAny(roles...) }
}

// Only is satisfied when role is held. Entries gated on a single role use it
// so the table reads that way.
func Only(role domain.Role) Predicate {
	return AnyOf(role)
}

// Item is one row of the navigation table.
type Item struct {
	Path    string
	Label   string
	Icon    string
	Visible Predicate
}

// Entry is an evaluated, visible navigation item.
type Entry struct {
	Path  string `json:"path"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Policy evaluates a fixed, ordered navigation table.
type Policy struct {
	mode  Mode
	items []Item
}

// NewPolicy copies items so later changes to the slice cannot leak in.
func NewPolicy(mode Mode, items []Item) *Policy {
	if mode == "" {
		mode = ModeUnion
	}
	return &Policy{mode: mode, items: append([]Item(nil), items...)}
}

// Default returns the dashboard navigation table under mode.
func Default(mode Mode) *Policy {
	return NewPolicy(mode, DefaultItems())
}

// Mode reports the configured evaluation mode.
func (p *Policy) Mode() Mode { return p.mode }

// Evaluate returns the entries visible to the union of roles, in table order.
// Input order and case do not matter.
func (p *Policy) Evaluate(roles ...domain.Role) []Entry {
	return p.evaluateSet(domain.NewRoleSet(roles...))
}

// Navigation evaluates the table for user under the configured mode.
// A nil user sees only the unconditional entries.
func (p *Policy) Navigation(user *domain.User) []Entry {
	return p.evaluateSet(p.effectiveRoles(user))
}

// Permits reports whether the roles may open path. The item with the longest
// matching path decides; paths outside the table are open to any signed-in
// user.
func (p *Policy) Permits(roles domain.RoleSet, path string) bool {
	item, ok := p.match(path)
	if !ok {
		return true
	}
	return item.Visible(roles)
}

// PermitsUser is Permits with the mode-specific role set of user.
func (p *Policy) PermitsUser(user *domain.User, path string) bool {
	return p.Permits(p.effectiveRoles(user), path)
}

// PermittedPaths lists the table paths roles may open, in table order.
func (p *Policy) PermittedPaths(roles ...domain.Role) []string {
	entries := p.Evaluate(roles...)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

// Paths lists every table path in table order.
func (p *Policy) Paths() []string {
	out := make([]string, 0, len(p.items))
	for _, it := range p.items {
		out = append(out, it.Path)
	}
	return out
}

// Lookup returns the table item that governs path.
func (p *Policy) Lookup(path string) (Item, bool) {
	return p.match(path)
}

func (p *Policy) effectiveRoles(user *domain.User) domain.RoleSet {
	if user == nil {
		return domain.RoleSet{}
	}
	if p.mode == ModeActiveRole {
		if user.CurrentRole == "" || !user.HasRole(user.CurrentRole) {
			return domain.RoleSet{}
		}
		return domain.NewRoleSet(user.CurrentRole)
	}
	return user.RoleSet()
}

func (p *Policy) evaluateSet(set domain.RoleSet) []Entry {
	out := make([]Entry, 0, len(p.items))
	for _, it := range p.items {
		if it.Visible(set) {
			out = append(out, Entry{Path: it.Path, Label: it.Label, Icon: it.Icon})
		}
	}
	return out
}

func (p *Policy) match(path string) (Item, bool) {
	path = cleanPath(path)
	var (
		best  Item
		found bool
	)
	for _, it := range p.items {
		if !HasPathPrefix(path, it.Path) {
			continue
		}
		if !found || len(it.Path) > len(best.Path) {
			best, found = it, true
		}
	}
	return best, found
}

// HasPathPrefix reports whether prefix matches path at a segment boundary:
// "/withdrawals" matches "/withdrawals/42" but not "/withdrawals-old".
func HasPathPrefix(path, prefix string) bool {
	path, prefix = cleanPath(path), cleanPath(prefix)
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || prefix == "/" || path[len(prefix)] == '/'
}

func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
