package domain

import "time"

// Role enumerates permission tiers within a tenant.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleHelpdesk Role = "helpdesk"
	RoleSupport  Role = "support"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleConsumer, RoleHelpdesk, RoleSupport, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role is an operator role rather than an
// end-consumer.
func (r Role) IsStaff() bool {
	return r == RoleHelpdesk || r == RoleSupport || r == RoleManager || r == RoleAdmin
}

// User is the domain model for an authenticated person. A user belongs to
// exactly one tenant and the tenant never changes after creation.
type User struct {
	ID           string
	TenantID     string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
