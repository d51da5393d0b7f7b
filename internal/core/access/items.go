package access

import "github.com/prbusiness/dashboard/internal/core/domain"

// DefaultItems is the dashboard navigation table. Order is render order.
func DefaultItems() []Item {
	return []Item{
		{Path: "/dashboard", Label: "Dashboard", Icon: "home", Visible: Always()},
		{Path: "/service-providers", Label: "Service Providers", Icon: "building", Visible: Only(domain.RoleSuperAdmin)},
		{Path: "/merchants", Label: "Merchants", Icon: "store", Visible: AnyOf(
			domain.RoleSuperAdmin,
			domain.RoleServiceProviderAdmin,
			domain.RoleServiceProviderStaff,
		)},
		{Path: "/staff", Label: "Staff", Icon: "users", Visible: AnyOf(
			domain.RoleServiceProviderAdmin,
			domain.RoleMerchantAdmin,
		)},
		{Path: "/permissions", Label: "Permissions", Icon: "shield", Visible: AnyOf(
			domain.RoleSuperAdmin,
			domain.RoleServiceProviderAdmin,
			domain.RoleMerchantAdmin,
		)},
		{Path: "/campaigns", Label: "Campaigns", Icon: "megaphone", Visible: AnyOf(
			domain.RoleSuperAdmin,
			domain.RoleServiceProviderAdmin,
			domain.RoleServiceProviderStaff,
			domain.RoleMerchantAdmin,
			domain.RoleMerchantStaff,
		)},
		{Path: "/campaigns/review", Label: "Campaign Review", Icon: "clipboard-check", Visible: AnyOf(
			domain.RoleSuperAdmin,
			domain.RoleServiceProviderAdmin,
		)},
		{Path: "/tasks", Label: "Task Hall", Icon: "list", Visible: Only(domain.RoleCreator)},
		{Path: "/my-tasks", Label: "My Tasks", Icon: "check-square", Visible: Only(domain.RoleCreator)},
		{Path: "/recharge", Label: "Recharge", Icon: "credit-card", Visible: Always()},
		{Path: "/credits", Label: "Credit Ledger", Icon: "book", Visible: Always()},
		{Path: "/withdrawals", Label: "Withdrawal History", Icon: "clock", Visible: Always()},
		{Path: "/withdrawals/review", Label: "Withdrawal Review", Icon: "check-circle", Visible: Only(domain.RoleSuperAdmin)},
	}
}
