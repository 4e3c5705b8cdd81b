package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated         EventType = "complaint_created"
	EventComplaintStatusChanged   EventType = "complaint_status_changed"
	EventComplaintAssigned        EventType = "complaint_assigned"
	EventComplaintResolutionAdded EventType = "complaint_resolution_added"
	EventComplaintClosed          EventType = "complaint_closed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID   string      `json:"user_id"`
	TenantID string      `json:"tenant_id"`
	Role     domain.Role `json:"role"`
}

// Event represents a domain event emitted by services. Events are
// fire-and-forget; the audit log remains the source of record.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	TenantID    string      `json:"tenant_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	ReferenceNumber string                   `json:"reference_number"`
	Title           string                   `json:"title"`
	Priority        domain.ComplaintPriority `json:"priority"`
	OnBehalfOf      *string                  `json:"on_behalf_of,omitempty"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	AssigneeID string                 `json:"assignee_id"`
	OldStatus  domain.ComplaintStatus `json:"old_status"`
	NewStatus  domain.ComplaintStatus `json:"new_status"`
}

// ComplaintResolutionAddedPayload payload.
type ComplaintResolutionAddedPayload struct {
	NotesPreview string `json:"notes_preview"`
}

// ComplaintClosedPayload payload.
type ComplaintClosedPayload struct {
	ReferenceNumber string `json:"reference_number"`
}
