package constants

import "fmt"

const (
	RoleAdmin  = "admin"
	RoleTenant = "tenant"

	// Dipakai oleh cron, CLI, dan webhook payment gateway.
	RoleSystem = "system"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess  = "❌ Hanya admin yang boleh mengakses fitur %s."
	ErrOnlyTenantsCanAccess = "❌ Hanya penyewa yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorTenant(feature string) string {
	return fmt.Sprintf(ErrOnlyTenantsCanAccess, feature)
}

var (
	AllRoles   = []string{RoleAdmin, RoleTenant}
	AdminOnly  = []string{RoleAdmin}
	TenantOnly = []string{RoleTenant}
)

func IsValidRole(r string) bool {
	return r == RoleAdmin || r == RoleTenant
}
