// Package access implements the pure permit/deny decision layer. Decisions
// combine a static role-action matrix with tenant scoping: a tenant mismatch
// denies regardless of role, except for system administrators, who bypass
// tenant scoping entirely.
package access

import "github.com/spec-kit/complaint-service/internal/domain"

// Action enumerates the operations gated by the policy.
type Action string

const (
	ActionCreate        Action = "complaint.create"
	ActionView          Action = "complaint.view"
	ActionList          Action = "complaint.list"
	ActionUpdateStatus  Action = "complaint.update_status"
	ActionAssign        Action = "complaint.assign"
	ActionAddResolution Action = "complaint.add_resolution"
	ActionClose         Action = "complaint.close"
)

var roleActions = map[domain.Role]map[Action]struct{}{
	domain.RoleConsumer: actionSet(ActionCreate, ActionView, ActionList, ActionClose),
	domain.RoleHelpdesk: actionSet(ActionCreate, ActionView, ActionList, ActionUpdateStatus, ActionAssign),
	domain.RoleSupport:  actionSet(ActionView, ActionList, ActionUpdateStatus, ActionAddResolution),
	domain.RoleManager:  actionSet(ActionView, ActionList, ActionUpdateStatus, ActionAssign, ActionAddResolution),
	domain.RoleAdmin:    actionSet(ActionCreate, ActionView, ActionList, ActionUpdateStatus, ActionAssign, ActionAddResolution),
}

func actionSet(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Allowed reports whether the role may perform the action at all, ignoring
// tenant scoping.
func Allowed(role domain.Role, action Action) bool {
	_, ok := roleActions[role][action]
	return ok
}

// Decide returns true when the actor may perform the action on a resource
// owned by resourceTenant. The decision is pure: no side effects, no I/O.
func Decide(role domain.Role, actorTenant, resourceTenant string, action Action) bool {
	if actorTenant != resourceTenant && role != domain.RoleAdmin {
		return false
	}
	return Allowed(role, action)
}

// CanResolve reports whether the role may move a complaint to resolved.
// Resolving is narrower than a general status update: helpdesk agents may
// advance work but only support staff and above may mark it resolved.
func CanResolve(role domain.Role) bool {
	return role == domain.RoleSupport || role == domain.RoleManager || role == domain.RoleAdmin
}
