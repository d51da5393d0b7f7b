// Package devbackend is an in-memory stand-in for the PR Business REST API.
// It serves the four operations the dashboard consumes and is meant for
// local development and integration tests only.
package devbackend

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/prbusiness/dashboard/internal/core/domain"
)

var (
	errUnknownAccount = errors.New("unknown account")
	errBadPassword    = errors.New("wrong phone number or password")
	errRoleNotHeld    = errors.New("role not assigned to user")
)

// accountNamespace derives stable account ids from phone numbers.
var accountNamespace = uuid.MustParse("6f1c2f4e-9d7a-4f4b-8a55-0b6f5f0d2c11")

// Seed describes one demo account.
type Seed struct {
	PhoneNumber string
	Password    string
	Nickname    string
	Roles       []domain.Role
}

// DefaultSeeds covers every navigation shape: single-role, multi-role and
// no role at all. They all share the password "demo1234".
func DefaultSeeds() []Seed {
	const pw = "demo1234"
	return []Seed{
		{PhoneNumber: "13800000001", Password: pw, Nickname: "Ada (super admin)", Roles: []domain.Role{domain.RoleSuperAdmin}},
		{PhoneNumber: "13800000002", Password: pw, Nickname: "Bo (service provider)", Roles: []domain.Role{domain.RoleServiceProviderAdmin, domain.RoleServiceProviderStaff}},
		{PhoneNumber: "13800000003", Password: pw, Nickname: "Chen (merchant + creator)", Roles: []domain.Role{domain.RoleMerchantAdmin, domain.RoleCreator}},
		{PhoneNumber: "13800000004", Password: pw, Nickname: "Dee (creator)", Roles: []domain.Role{domain.RoleCreator}},
		{PhoneNumber: "13800000005", Password: pw, Nickname: "Eli (no role)"},
	}
}

type account struct {
	user         domain.User
	passwordHash []byte
}

// Directory holds the demo accounts.
type Directory struct {
	mu      sync.RWMutex
	byPhone map[string]*account
	byID    map[string]*account
	now     func() time.Time
}

// NewDirectory hashes the seed passwords with the given bcrypt cost
// (bcrypt.DefaultCost when cost is zero).
func NewDirectory(seeds []Seed, cost int) (*Directory, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	d := &Directory{
		byPhone: make(map[string]*account, len(seeds)),
		byID:    make(map[string]*account, len(seeds)),
		now:     time.Now,
	}
	now := d.now().UTC()
	for _, s := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), cost)
		if err != nil {
			return nil, err
		}
		u := domain.User{
			ID:          uuid.NewSHA1(accountNamespace, []byte(s.PhoneNumber)).String(),
			Nickname:    s.Nickname,
			PhoneNumber: s.PhoneNumber,
			Roles:       append([]domain.Role(nil), s.Roles...),
			Status:      "active",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		u.Normalize()
		a := &account{user: u, passwordHash: hash}
		d.byPhone[s.PhoneNumber] = a
		d.byID[u.ID] = a
	}
	return d, nil
}

// Authenticate checks a phone number and password.
func (d *Directory) Authenticate(phoneNumber, password string) (*domain.User, error) {
	d.mu.RLock()
	a, ok := d.byPhone[phoneNumber]
	d.mu.RUnlock()
	if !ok {
		return nil, errBadPassword
	}
	if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
		return nil, errBadPassword
	}
	return d.Get(a.user.ID)
}

// Get returns a copy of the account's user record.
func (d *Directory) Get(id string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[id]
	if !ok {
		return nil, errUnknownAccount
	}
	return a.user.Clone(), nil
}

// SwitchRole makes role the active one, remembering the previous active
// role as lastUsedRole.
func (d *Directory) SwitchRole(id string, role domain.Role) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.byID[id]
	if !ok {
		return nil, errUnknownAccount
	}
	role = role.Normalize()
	if !a.user.HasRole(role) {
		return nil, errRoleNotHeld
	}
	if a.user.CurrentRole != role {
		a.user.LastUsedRole = a.user.CurrentRole
		a.user.CurrentRole = role
		a.user.UpdatedAt = d.now().UTC()
	}
	return a.user.Clone(), nil
}
