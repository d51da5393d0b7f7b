package access

import (
	"reflect"
	"testing"

	"github.com/prbusiness/dashboard/internal/core/domain"
)

func paths(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestEvaluate_Deterministic(t *testing.T) {
	p := Default(ModeUnion)

	a := p.Evaluate(domain.RoleMerchantAdmin, domain.RoleCreator)
	b := p.Evaluate("creator", " merchant_admin ")
	c := p.Evaluate(domain.RoleCreator, domain.RoleMerchantAdmin, domain.RoleCreator)

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("case/order changed result:\n%v\n%v", paths(a), paths(b))
	}
	if !reflect.DeepEqual(a, c) {
		t.Fatalf("duplicates changed result:\n%v\n%v", paths(a), paths(c))
	}
	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(a, p.Evaluate(domain.RoleMerchantAdmin, domain.RoleCreator)) {
			t.Fatalf("evaluation %d differs", i)
		}
	}
}

func TestEvaluate_WithdrawalReview(t *testing.T) {
	p := Default(ModeUnion)

	if !contains(paths(p.Evaluate(domain.RoleSuperAdmin)), "/withdrawals/review") {
		t.Fatalf("super admin must see withdrawal review")
	}
	if contains(paths(p.Evaluate(domain.RoleCreator)), "/withdrawals/review") {
		t.Fatalf("creator must not see withdrawal review")
	}
}

func TestEvaluate_NoRoles(t *testing.T) {
	p := Default(ModeUnion)

	got := paths(p.Evaluate())
	want := []string{"/dashboard", "/recharge", "/credits", "/withdrawals"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEvaluate_UnknownRoleUnlocksNothing(t *testing.T) {
	p := Default(ModeUnion)

	if !reflect.DeepEqual(p.Evaluate("AUDITOR"), p.Evaluate()) {
		t.Fatalf("unknown role should behave like no role")
	}
}

func TestEvaluate_UnionOfRoles(t *testing.T) {
	p := Default(ModeUnion)

	got := paths(p.Evaluate(domain.RoleMerchantAdmin, domain.RoleCreator))
	for _, want := range []string{"/staff", "/campaigns", "/tasks", "/my-tasks"} {
		if !contains(got, want) {
			t.Errorf("expected %s in %v", want, got)
		}
	}
	if contains(got, "/service-providers") {
		t.Errorf("unexpected /service-providers in %v", got)
	}
}

func TestNavigation_ActiveRoleMode(t *testing.T) {
	user := &domain.User{
		ID:          "u1",
		Roles:       []domain.Role{domain.RoleMerchantAdmin, domain.RoleCreator},
		CurrentRole: domain.RoleMerchantAdmin,
	}

	legacy := paths(Default(ModeActiveRole).Navigation(user))
	if contains(legacy, "/tasks") {
		t.Fatalf("legacy mode must hide menus of inactive roles: %v", legacy)
	}
	if !contains(legacy, "/campaigns") {
		t.Fatalf("legacy mode must show menus of the active role: %v", legacy)
	}

	union := paths(Default(ModeUnion).Navigation(user))
	if !contains(union, "/tasks") || !contains(union, "/campaigns") {
		t.Fatalf("union mode must show every held role's menus: %v", union)
	}
}

func TestNavigation_NilUser(t *testing.T) {
	got := paths(Default(ModeUnion).Navigation(nil))
	if len(got) != 4 {
		t.Fatalf("expected only unconditional entries, got %v", got)
	}
}

func TestPermits(t *testing.T) {
	p := Default(ModeUnion)
	creator := domain.NewRoleSet(domain.RoleCreator)
	admin := domain.NewRoleSet(domain.RoleSuperAdmin)

	cases := []struct {
		name  string
		roles domain.RoleSet
		path  string
		want  bool
	}{
		{"history open to all", creator, "/withdrawals", true},
		{"review needs super admin", creator, "/withdrawals/review", false},
		{"review nested path", creator, "/withdrawals/review/42", false},
		{"review for super admin", admin, "/withdrawals/review", true},
		{"history detail", creator, "/withdrawals/17", true},
		{"trailing slash", creator, "/tasks/", true},
		{"query string ignored", creator, "/merchants?page=2", false},
		{"outside table", creator, "/profile", true},
		{"no segment bleed", creator, "/withdrawals-archive", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Permits(tc.roles, tc.path); got != tc.want {
				t.Fatalf("Permits(%s) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestPermittedPaths(t *testing.T) {
	got := Default(ModeUnion).PermittedPaths(domain.RoleCreator)
	want := []string{"/dashboard", "/tasks", "/my-tasks", "/recharge", "/credits", "/withdrawals"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeUnion {
		t.Fatalf("empty mode: %v %v", m, err)
	}
	if m, err := ParseMode("Active_Role"); err != nil || m != ModeActiveRole {
		t.Fatalf("active_role: %v %v", m, err)
	}
	if _, err := ParseMode("everything"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
