package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionForward(t *testing.T) {
	assert.True(t, CanTransition(StatusOpen, StatusInProgress))
	assert.True(t, CanTransition(StatusInProgress, StatusResolved))
	assert.True(t, CanTransition(StatusResolved, StatusClosed))
}

func TestCanTransitionRejectsBackward(t *testing.T) {
	assert.False(t, CanTransition(StatusInProgress, StatusOpen))
	assert.False(t, CanTransition(StatusResolved, StatusInProgress))
	assert.False(t, CanTransition(StatusClosed, StatusOpen))
	assert.False(t, CanTransition(StatusClosed, StatusResolved))
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	assert.False(t, CanTransition(StatusOpen, StatusResolved))
	assert.False(t, CanTransition(StatusOpen, StatusClosed))
	assert.False(t, CanTransition(StatusInProgress, StatusClosed))
}

func TestCanTransitionRejectsSelf(t *testing.T) {
	for _, s := range []ComplaintStatus{StatusOpen, StatusInProgress, StatusResolved, StatusClosed} {
		assert.False(t, CanTransition(s, s), "self transition for %s", s)
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleConsumer, RoleHelpdesk, RoleSupport, RoleManager, RoleAdmin} {
		assert.True(t, ValidRole(r))
	}
	assert.False(t, ValidRole(Role("superuser")))
}

func TestRoleIsStaff(t *testing.T) {
	assert.False(t, RoleConsumer.IsStaff())
	for _, r := range []Role{RoleHelpdesk, RoleSupport, RoleManager, RoleAdmin} {
		assert.True(t, r.IsStaff(), "role %s", r)
	}
}
