package user

import "time"

type Role string

const (
	RoleSuperAdmin Role = "superadmin" // manages back-office users
	RoleAdmin      Role = "admin"
	RoleHR         Role = "hr"
)

var Roles = []string{string(RoleSuperAdmin), string(RoleAdmin), string(RoleHR)}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanManagePayroll reports whether the user may write employees, attendance and payroll.
func (u *User) CanManagePayroll() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleAdmin || u.Role == RoleHR
}
