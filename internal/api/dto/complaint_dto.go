package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string                   `json:"title" form:"title"`
	Description string                   `json:"description" form:"description"`
	Category    string                   `json:"category" form:"category"`
	Priority    domain.ComplaintPriority `json:"priority" form:"priority"`
	OnBehalfOf  *string                  `json:"on_behalf_of" form:"on_behalf_of"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.ComplaintStatus `json:"status" form:"status"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id" form:"assignee_id"`
}

// ResolutionRequest payload.
type ResolutionRequest struct {
	ResolutionNotes string `json:"resolution_notes" form:"resolution_notes"`
}

// ComplaintSummary response.
type ComplaintSummary struct {
	ID              string                   `json:"id"`
	ReferenceNumber string                   `json:"reference_number"`
	Title           string                   `json:"title"`
	Category        string                   `json:"category"`
	Priority        domain.ComplaintPriority `json:"priority"`
	Status          domain.ComplaintStatus   `json:"status"`
	AssignedTo      *string                  `json:"assigned_to"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ComplaintDetailResponse provides full complaint info.
type ComplaintDetailResponse struct {
	ID              string                   `json:"id"`
	ReferenceNumber string                   `json:"reference_number"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	Category        string                   `json:"category"`
	Priority        domain.ComplaintPriority `json:"priority"`
	Status          domain.ComplaintStatus   `json:"status"`
	SubmittedBy     string                   `json:"submitted_by"`
	LoggedBy        *string                  `json:"logged_by"`
	AssignedTo      *string                  `json:"assigned_to"`
	ResolutionNotes string                   `json:"resolution_notes"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	ResolvedAt      *time.Time               `json:"resolved_at"`
	ClosedAt        *time.Time               `json:"closed_at"`
	AuditTrail      []AuditEntryResponse     `json:"audit_trail"`
	AssignableStaff []StaffOption            `json:"assignable_staff"`
}

// AuditEntryResponse represents a single audit trail entry.
type AuditEntryResponse struct {
	ID        string             `json:"id"`
	Action    domain.AuditAction `json:"action"`
	UserID    *string            `json:"user_id"`
	Detail    string             `json:"detail"`
	OldValue  string             `json:"old_value,omitempty"`
	NewValue  string             `json:"new_value,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// StaffOption is a user a complaint can be assigned to.
type StaffOption struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}
