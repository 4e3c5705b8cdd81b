package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "open"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusClosed     ComplaintStatus = "closed"
)

// ValidStatus reports whether the value is a known lifecycle state.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// ComplaintPriority enumerates urgency levels.
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "low"
	PriorityMedium ComplaintPriority = "medium"
	PriorityHigh   ComplaintPriority = "high"
)

// ValidPriority reports whether the value is a known priority.
func ValidPriority(p ComplaintPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Complaint is the aggregate for tenant-scoped complaints.
type Complaint struct {
	ID              string
	TenantID        string
	ReferenceNumber string
	Title           string
	Description     string
	Category        string
	Priority        ComplaintPriority
	Status          ComplaintStatus
	SubmittedBy     string
	LoggedBy        *string
	AssignedTo      *string
	ResolutionNotes string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
}

// Lifecycle moves strictly forward. Backward and skip transitions are
// rejected for every role, administrators included.
var allowedTransitions = map[ComplaintStatus][]ComplaintStatus{
	StatusOpen:       {StatusInProgress},
	StatusInProgress: {StatusResolved},
	StatusResolved:   {StatusClosed},
	StatusClosed:     {},
}

// CanTransition reports whether an explicit status update from current to
// next is permitted.
func CanTransition(current, next ComplaintStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
