package user

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"   // Full access, manages service accounts
	RolePlanner Role = "planner" // Can start planning runs
	RoleViewer  Role = "viewer"  // Read-only access to schedules
)

// User is a service account of a consuming system (payroll, WFM) or an
// operator. There is no self-service signup; accounts are provisioned.
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user has full access
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanPlan checks if user may start planning runs
func (u *User) CanPlan() bool {
	return u.Role == RoleAdmin || u.Role == RolePlanner
}
