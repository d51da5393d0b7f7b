package view

import (
	"github.com/prbusiness/dashboard/internal/core/access"
	"github.com/prbusiness/dashboard/internal/core/domain"
)

// NavEntry is a visible navigation item and whether it matches the page.
type NavEntry struct {
	access.Entry
	Active bool
}

// RoleBadge is a held role as displayed in the header.
type RoleBadge struct {
	domain.RoleInfo
	Active bool
}

// Nav is the view model shared by the desktop sidebar and the mobile menu.
type Nav struct {
	Mode      access.Mode
	Entries   []NavEntry
	Roles     []RoleBadge
	CanSwitch bool
}

// BuildNav evaluates the policy for user and marks the entry whose path is
// the longest prefix of path as active.
func BuildNav(policy *access.Policy, user *domain.User, path string) Nav {
	entries := policy.Navigation(user)
	nav := Nav{Mode: policy.Mode(), Entries: make([]NavEntry, len(entries))}

	best := -1
	for i, e := range entries {
		nav.Entries[i] = NavEntry{Entry: e}
		if access.HasPathPrefix(path, e.Path) && (best < 0 || len(e.Path) > len(entries[best].Path)) {
			best = i
		}
	}
	if best >= 0 {
		nav.Entries[best].Active = true
	}

	if user != nil {
		current := user.CurrentRole.Normalize()
		for _, r := range user.RoleSet().Sorted() {
			nav.Roles = append(nav.Roles, RoleBadge{RoleInfo: r.Info(), Active: r == current})
		}
	}
	nav.CanSwitch = len(nav.Roles) > 1
	return nav
}
