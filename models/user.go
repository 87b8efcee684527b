package models

import (
	"time"
)

type Role string

const (
	RoleTeam       Role = "team"
	RoleSupervisor Role = "supervisor"
	RoleManager    Role = "manager"
)

// ParseRole accepts a role name in any case and reports whether it is known.
func ParseRole(s string) (Role, bool) {
	switch Role(normalizeRole(s)) {
	case RoleTeam:
		return RoleTeam, true
	case RoleSupervisor:
		return RoleSupervisor, true
	case RoleManager:
		return RoleManager, true
	}
	return "", false
}

type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Username           string    `gorm:"uniqueIndex;not null;size:120" json:"username"`
	PasswordHash       string    `gorm:"not null;size:256" json:"-"`
	Role               Role      `gorm:"not null;size:50" json:"role"`
	MustChangePassword bool      `gorm:"default:false" json:"must_change_password"`
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

func (u *User) IsSupervisor() bool {
	return u.Role == RoleSupervisor
}

func (u *User) IsTeam() bool {
	return u.Role == RoleTeam
}

// Can reports whether the user's role grants the capability.
func (u *User) Can(c Capability) bool {
	if u == nil {
		return false
	}
	return u.Role.Can(c)
}

func (u *User) CanViewAllRecords() bool {
	return u.Can(CapListAll)
}

func (u *User) CanEditRecords() bool {
	return u.Can(CapEditRecord)
}

func (u *User) CanDeleteRecords() bool {
	return u.Can(CapDeleteRecord)
}

func (u *User) CanSignOff() bool {
	return u.Can(CapSetSignOff)
}

func (u *User) CanExport() bool {
	return u.Can(CapExportMonthly)
}
