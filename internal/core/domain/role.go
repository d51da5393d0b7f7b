package domain

import (
	"sort"
	"strings"
)

// Role is a capability tag a user may hold zero or more of.
type Role string

const (
	RoleSuperAdmin           Role = "SUPER_ADMIN"
	RoleServiceProviderAdmin Role = "SERVICE_PROVIDER_ADMIN"
	RoleServiceProviderStaff Role = "SERVICE_PROVIDER_STAFF"
	RoleMerchantAdmin        Role = "MERCHANT_ADMIN"
	RoleMerchantStaff        Role = "MERCHANT_STAFF"
	RoleCreator              Role = "CREATOR"
	RoleBasicUser            Role = "BASIC_USER"
)

// RoleInfo is the static display metadata of a role.
type RoleInfo struct {
	Role        Role   `json:"role"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

const neutralColor = "bg-gray-100 text-gray-800"

// roleOrder fixes the order roles are listed in everywhere (badges, switcher).
var roleOrder = []Role{
	RoleSuperAdmin,
	RoleServiceProviderAdmin,
	RoleServiceProviderStaff,
	RoleMerchantAdmin,
	RoleMerchantStaff,
	RoleCreator,
	RoleBasicUser,
}

var roleRegistry = map[Role]RoleInfo{
	RoleSuperAdmin: {
		Role:        RoleSuperAdmin,
		Name:        "Super Admin",
		Description: "Full platform administration, including withdrawal review.",
		Color:       "bg-red-100 text-red-800",
	},
	RoleServiceProviderAdmin: {
		Role:        RoleServiceProviderAdmin,
		Name:        "Service Provider Admin",
		Description: "Manages a service provider, its merchants and staff.",
		Color:       "bg-purple-100 text-purple-800",
	},
	RoleServiceProviderStaff: {
		Role:        RoleServiceProviderStaff,
		Name:        "Service Provider Staff",
		Description: "Works on behalf of a service provider.",
		Color:       "bg-indigo-100 text-indigo-800",
	},
	RoleMerchantAdmin: {
		Role:        RoleMerchantAdmin,
		Name:        "Merchant Admin",
		Description: "Manages a merchant, its staff and campaigns.",
		Color:       "bg-blue-100 text-blue-800",
	},
	RoleMerchantStaff: {
		Role:        RoleMerchantStaff,
		Name:        "Merchant Staff",
		Description: "Creates and follows campaigns for a merchant.",
		Color:       "bg-cyan-100 text-cyan-800",
	},
	RoleCreator: {
		Role:        RoleCreator,
		Name:        "Creator",
		Description: "Accepts and submits marketing tasks.",
		Color:       "bg-green-100 text-green-800",
	},
	RoleBasicUser: {
		Role:        RoleBasicUser,
		Name:        "Basic User",
		Description: "Registered account without an organization role.",
		Color:       neutralColor,
	},
}

// ParseRole normalizes s and reports whether it names a registered role.
func ParseRole(s string) (Role, bool) {
	r := Role(s).Normalize()
	_, ok := roleRegistry[r]
	return r, ok
}

// Normalize returns the canonical (trimmed, upper case) form of r.
func (r Role) Normalize() Role {
	return Role(strings.ToUpper(strings.TrimSpace(string(r))))
}

// Equal compares two roles case-insensitively.
func (r Role) Equal(other Role) bool {
	return r.Normalize() == other.Normalize()
}

// Known reports whether r is part of the registry.
func (r Role) Known() bool {
	_, ok := roleRegistry[r.Normalize()]
	return ok
}

// Info returns the registry entry for r. Unknown roles get their raw name
// and a neutral color.
func (r Role) Info() RoleInfo {
	n := r.Normalize()
	if info, ok := roleRegistry[n]; ok {
		return info
	}
	return RoleInfo{Role: n, Name: string(n), Color: neutralColor}
}

func (r Role) String() string { return string(r) }

// AllRoles returns every registered role in display order.
func AllRoles() []RoleInfo {
	out := make([]RoleInfo, 0, len(roleOrder))
	for _, r := range roleOrder {
		out = append(out, roleRegistry[r])
	}
	return out
}

// RoleSet is a normalized set of held roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from roles, normalizing case and dropping blanks.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		n := r.Normalize()
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}

// Has reports whether r is in the set, ignoring case.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r.Normalize()]
	return ok
}

// HasAny reports whether at least one of roles is in the set.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Sorted returns the members in registry order, unknown roles last in
// lexical order.
func (s RoleSet) Sorted() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range roleOrder {
		if _, ok := s[r]; ok {
			out = append(out, r)
		}
	}
	var unknown []Role
	for r := range s {
		if !r.Known() {
			unknown = append(unknown, r)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(out, unknown...)
}
