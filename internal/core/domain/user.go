package domain

import (
	"fmt"
	"time"
)

// User is the cached identity of the signed-in account.
type User struct {
	ID           string    `json:"id"`
	Nickname     string    `json:"nickname,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	Roles        []Role    `json:"roles"`
	CurrentRole  Role      `json:"currentRole,omitempty"`
	LastUsedRole Role      `json:"lastUsedRole,omitempty"`
	Status       string    `json:"status,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// RoleSet returns the held roles as a normalized set.
func (u *User) RoleSet() RoleSet {
	if u == nil {
		return RoleSet{}
	}
	return NewRoleSet(u.Roles...)
}

// HasRole reports whether r is held, ignoring case.
func (u *User) HasRole(r Role) bool {
	return u.RoleSet().Has(r)
}

// DisplayName falls back to the phone number, then the id.
func (u *User) DisplayName() string {
	switch {
	case u.Nickname != "":
		return u.Nickname
	case u.PhoneNumber != "":
		return u.PhoneNumber
	}
	return u.ID
}

// Normalize upper-cases and de-duplicates roles, keeping first-seen order,
// and fills a missing active role from lastUsedRole or the first held role.
// Source data is inconsistently cased, so every record entering the system
// goes through here.
func (u *User) Normalize() {
	seen := make(map[Role]struct{}, len(u.Roles))
	roles := make([]Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		n := r.Normalize()
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		roles = append(roles, n)
	}
	u.Roles = roles
	u.CurrentRole = u.CurrentRole.Normalize()
	u.LastUsedRole = u.LastUsedRole.Normalize()

	if len(u.Roles) == 0 {
		u.CurrentRole = ""
		return
	}
	if _, ok := seen[u.CurrentRole]; ok {
		return
	}
	if _, ok := seen[u.LastUsedRole]; ok {
		u.CurrentRole = u.LastUsedRole
		return
	}
	u.CurrentRole = u.Roles[0]
}

// Validate checks the record invariants: an id, unique roles, and an active
// role that is held (or absent when no role is held).
func (u *User) Validate() error {
	if u == nil || u.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidUser)
	}
	seen := make(map[Role]struct{}, len(u.Roles))
	for _, r := range u.Roles {
		n := r.Normalize()
		if n == "" {
			return fmt.Errorf("%w: blank role", ErrInvalidUser)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: duplicate role %s", ErrInvalidUser, n)
		}
		seen[n] = struct{}{}
	}
	if len(u.Roles) == 0 {
		if u.CurrentRole != "" {
			return fmt.Errorf("%w: active role %s without held roles", ErrInvalidUser, u.CurrentRole)
		}
		return nil
	}
	if _, ok := seen[u.CurrentRole.Normalize()]; !ok {
		return fmt.Errorf("%w: active role %q not held", ErrInvalidUser, u.CurrentRole)
	}
	return nil
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append([]Role(nil), u.Roles...)
	return &c
}
