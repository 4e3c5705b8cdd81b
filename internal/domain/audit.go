package domain

import "time"

// AuditAction captures the kind of lifecycle event being recorded.
type AuditAction string

const (
	AuditCreated         AuditAction = "created"
	AuditStatusChange    AuditAction = "status_change"
	AuditAssigned        AuditAction = "assigned"
	AuditResolutionAdded AuditAction = "resolution_added"
	AuditClosed          AuditAction = "closed"
)

// AuditEntry is an immutable record of a lifecycle-relevant event. Entries
// are append-only and never updated or deleted.
type AuditEntry struct {
	ID          string
	TenantID    string
	ComplaintID string
	UserID      *string
	Action      AuditAction
	Detail      string
	OldValue    string
	NewValue    string
	CreatedAt   time.Time
}
