package domain

import "time"

// Tenant is an isolated organisation. All users and complaints belong to
// exactly one tenant, and tenants are immutable once created.
type Tenant struct {
	ID        string
	Name      string
	Slug      string
	Active    bool
	CreatedAt time.Time
}
