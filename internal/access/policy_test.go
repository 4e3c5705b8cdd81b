package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestDecideTenantMismatchDenies(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleConsumer, domain.RoleHelpdesk, domain.RoleSupport, domain.RoleManager} {
		assert.False(t, Decide(role, "tenant-a", "tenant-b", ActionView), "role %s must not cross tenants", role)
		assert.False(t, Decide(role, "tenant-a", "tenant-b", ActionUpdateStatus), "role %s must not cross tenants", role)
	}
}

func TestDecideAdminBypassesTenantScoping(t *testing.T) {
	assert.True(t, Decide(domain.RoleAdmin, "tenant-a", "tenant-b", ActionView))
	assert.True(t, Decide(domain.RoleAdmin, "tenant-a", "tenant-b", ActionUpdateStatus))
}

func TestDecideMatrix(t *testing.T) {
	cases := []struct {
		role   domain.Role
		action Action
		want   bool
	}{
		{domain.RoleConsumer, ActionCreate, true},
		{domain.RoleConsumer, ActionClose, true},
		{domain.RoleConsumer, ActionUpdateStatus, false},
		{domain.RoleConsumer, ActionAssign, false},
		{domain.RoleConsumer, ActionAddResolution, false},
		{domain.RoleHelpdesk, ActionCreate, true},
		{domain.RoleHelpdesk, ActionAssign, true},
		{domain.RoleHelpdesk, ActionAddResolution, false},
		{domain.RoleHelpdesk, ActionClose, false},
		{domain.RoleSupport, ActionUpdateStatus, true},
		{domain.RoleSupport, ActionAddResolution, true},
		{domain.RoleSupport, ActionAssign, false},
		{domain.RoleManager, ActionAssign, true},
		{domain.RoleManager, ActionAddResolution, true},
		{domain.RoleManager, ActionClose, false},
		{domain.RoleAdmin, ActionCreate, true},
		{domain.RoleAdmin, ActionAssign, true},
		{domain.RoleAdmin, ActionClose, false},
	}
	for _, tc := range cases {
		got := Decide(tc.role, "tenant-a", "tenant-a", tc.action)
		assert.Equal(t, tc.want, got, "role=%s action=%s", tc.role, tc.action)
	}
}

func TestCanResolve(t *testing.T) {
	assert.False(t, CanResolve(domain.RoleConsumer))
	assert.False(t, CanResolve(domain.RoleHelpdesk))
	assert.True(t, CanResolve(domain.RoleSupport))
	assert.True(t, CanResolve(domain.RoleManager))
	assert.True(t, CanResolve(domain.RoleAdmin))
}
