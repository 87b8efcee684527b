package models

import "strings"

// Capability names one role-gated operation.
type Capability string

const (
	CapCreateRecord  Capability = "create_record"
	CapSetSignOff    Capability = "set_sign_off"
	CapListOwn       Capability = "list_own"
	CapListAll       Capability = "list_all"
	CapEditRecord    Capability = "edit_record"
	CapDeleteRecord  Capability = "delete_record"
	CapExportMonthly Capability = "export_monthly"
)

// capabilities is the only place role permissions are defined.
var capabilities = map[Role]map[Capability]bool{
	RoleTeam: {
		CapCreateRecord: true,
		CapListOwn:      true,
	},
	RoleSupervisor: {
		CapCreateRecord:  true,
		CapSetSignOff:    true,
		CapListOwn:       true,
		CapListAll:       true,
		CapEditRecord:    true,
		CapDeleteRecord:  true,
		CapExportMonthly: true,
	},
	RoleManager: {
		CapCreateRecord:  true,
		CapSetSignOff:    true,
		CapListOwn:       true,
		CapListAll:       true,
		CapEditRecord:    true,
		CapDeleteRecord:  true,
		CapExportMonthly: true,
	},
}

// Can reports whether the role grants the capability. Unknown roles get nothing.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// Roles lists the known roles in ascending order of privilege.
func Roles() []Role {
	return []Role{RoleTeam, RoleSupervisor, RoleManager}
}

func normalizeRole(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
