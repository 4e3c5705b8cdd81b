package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/access"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// ComplaintService coordinates complaint workflows. Every read and write is
// tenant-scoped through loadScoped; every lifecycle write appends exactly one
// audit entry.
type ComplaintService struct {
	tenants    repository.TenantRepository
	users      repository.UserRepository
	complaints repository.ComplaintRepository
	audit      repository.AuditRepository
	dispatcher events.Dispatcher
	cache      StatCache
}

// ComplaintDependencies bundles repositories for the complaint service.
type ComplaintDependencies struct {
	TenantRepo    repository.TenantRepository
	UserRepo      repository.UserRepository
	ComplaintRepo repository.ComplaintRepository
	AuditRepo     repository.AuditRepository
	Dispatcher    events.Dispatcher
	Cache         StatCache
}

// CreateComplaintInput describes complaint creation payload.
type CreateComplaintInput struct {
	Title       string
	Description string
	Category    string
	Priority    domain.ComplaintPriority
	OnBehalfOf  *string
}

// ComplaintListFilter describes listing filters.
type ComplaintListFilter struct {
	Statuses   []domain.ComplaintStatus
	Priorities []domain.ComplaintPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// ComplaintDetail bundles a complaint with its audit trail and the staff it
// can be assigned to.
type ComplaintDetail struct {
	Complaint       *domain.Complaint
	AuditTrail      []domain.AuditEntry
	AssignableStaff []domain.User
}

// CreateOptions feeds the complaint creation form: available priorities and,
// for staff who log on behalf of consumers, the tenant's consumer accounts.
type CreateOptions struct {
	Priorities []domain.ComplaintPriority
	Consumers  []domain.User
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		tenants:    deps.TenantRepo,
		users:      deps.UserRepo,
		complaints: deps.ComplaintRepo,
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
	}
}

// GetCreateOptions returns the data backing the creation form.
func (s *ComplaintService) GetCreateOptions(ctx context.Context, actor *domain.User) (*CreateOptions, error) {
	if !access.Allowed(actor.Role, access.ActionCreate) {
		return nil, apperrors.NewForbidden("role may not create complaints")
	}
	options := &CreateOptions{
		Priorities: []domain.ComplaintPriority{domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh},
	}
	if actor.Role != domain.RoleConsumer {
		consumers, err := s.users.ListByTenantAndRoles(ctx, actor.TenantID, []domain.Role{domain.RoleConsumer})
		if err != nil {
			return nil, err
		}
		options.Consumers = consumers
	}
	return options, nil
}

// Create files a new complaint in the open state. Consumers submit for
// themselves; helpdesk agents and administrators log on behalf of a consumer.
func (s *ComplaintService) Create(ctx context.Context, actor *domain.User, input CreateComplaintInput) (*domain.Complaint, error) {
	if !access.Allowed(actor.Role, access.ActionCreate) {
		return nil, apperrors.NewForbidden("role may not create complaints")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(priority)})
	}

	submitter := actor
	var loggedBy *string
	if actor.Role == domain.RoleConsumer {
		if input.OnBehalfOf != nil {
			return nil, apperrors.NewValidationError("consumers cannot submit on behalf of others", nil)
		}
	} else {
		if input.OnBehalfOf == nil || *input.OnBehalfOf == "" {
			return nil, apperrors.NewValidationError("on_behalf_of consumer required", nil)
		}
		consumer, err := s.users.GetByID(ctx, *input.OnBehalfOf)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("consumer", nil)
			}
			return nil, err
		}
		if consumer.TenantID != actor.TenantID && actor.Role != domain.RoleAdmin {
			return nil, apperrors.NewNotFound("consumer", nil)
		}
		if consumer.Role != domain.RoleConsumer {
			return nil, apperrors.NewValidationError("complaints can only be logged for consumers", nil)
		}
		submitter = consumer
		loggedBy = &actor.ID
	}

	tenant, err := s.tenants.GetByID(ctx, submitter.TenantID)
	if err != nil {
		return nil, err
	}

	complaint := &domain.Complaint{
		TenantID:        tenant.ID,
		ReferenceNumber: generateReferenceNumber(tenant.Slug),
		Title:           title,
		Description:     description,
		Category:        strings.TrimSpace(input.Category),
		Priority:        priority,
		Status:          domain.StatusOpen,
		SubmittedBy:     submitter.ID,
		LoggedBy:        loggedBy,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}

	if err := s.appendAudit(ctx, actor, complaint, domain.AuditCreated,
		fmt.Sprintf("Complaint created: %s", complaint.Title), "", string(domain.StatusOpen)); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, complaint.TenantID)

	s.publishEvent(ctx, actor, complaint, events.EventComplaintCreated, events.ComplaintCreatedPayload{
		ReferenceNumber: complaint.ReferenceNumber,
		Title:           complaint.Title,
		Priority:        complaint.Priority,
		OnBehalfOf:      loggedBy,
	})
	return complaint, nil
}

// List returns complaints visible to the actor. Non-admins are confined to
// their tenant; consumers additionally to their own submissions.
func (s *ComplaintService) List(ctx context.Context, actor *domain.User, filter ComplaintListFilter) ([]domain.Complaint, error) {
	if !access.Allowed(actor.Role, access.ActionList) {
		return nil, apperrors.NewForbidden("role may not list complaints")
	}

	repoFilter := repository.ComplaintFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if actor.Role != domain.RoleAdmin {
		tenantID := actor.TenantID
		repoFilter.TenantID = &tenantID
	}
	if actor.Role == domain.RoleConsumer {
		repoFilter.SubmittedBy = &actor.ID
	}
	return s.complaints.ListWithFilter(ctx, repoFilter)
}

// Get returns the complaint with its audit trail and assignable staff.
func (s *ComplaintService) Get(ctx context.Context, actor *domain.User, complaintID string) (*ComplaintDetail, error) {
	complaint, err := s.loadScoped(ctx, actor, complaintID, access.ActionView)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleConsumer && complaint.SubmittedBy != actor.ID {
		return nil, apperrors.NewForbidden("consumers may only view their own complaints")
	}

	trail, err := s.audit.ListByComplaint(ctx, complaint.ID, 20, 0)
	if err != nil {
		return nil, err
	}
	staff, err := s.users.ListByTenantAndRoles(ctx, complaint.TenantID,
		[]domain.Role{domain.RoleSupport, domain.RoleManager})
	if err != nil {
		return nil, err
	}

	return &ComplaintDetail{Complaint: complaint, AuditTrail: trail, AssignableStaff: staff}, nil
}

// UpdateStatus performs an explicit lifecycle transition. Moves are strictly
// forward; moving to resolved needs a resolving role, and closing goes
// through Close so only the submitting consumer can confirm.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor *domain.User, complaintID string, newStatus domain.ComplaintStatus) (*domain.Complaint, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(newStatus)})
	}
	complaint, err := s.loadScoped(ctx, actor, complaintID, access.ActionUpdateStatus)
	if err != nil {
		return nil, err
	}
	if newStatus == domain.StatusClosed {
		return nil, apperrors.NewForbidden("only the submitting consumer may close a complaint")
	}
	if newStatus == domain.StatusResolved && !access.CanResolve(actor.Role) {
		return nil, apperrors.NewForbidden("role may not resolve complaints")
	}
	if !domain.CanTransition(complaint.Status, newStatus) {
		return nil, apperrors.NewInvalidTransition(string(complaint.Status), string(newStatus))
	}

	oldStatus := complaint.Status
	complaint.Status = newStatus
	if newStatus == domain.StatusResolved && complaint.ResolvedAt == nil {
		now := time.Now()
		complaint.ResolvedAt = &now
	}
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, err
	}

	if err := s.appendAudit(ctx, actor, complaint, domain.AuditStatusChange,
		fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus),
		string(oldStatus), string(newStatus)); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, complaint.TenantID)

	s.publishEvent(ctx, actor, complaint, events.EventComplaintStatusChanged, events.ComplaintStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
	return complaint, nil
}

// Assign sets the assignee. The assignee must be support staff or a manager
// in the complaint's tenant. Assigning an open complaint advances it to
// in_progress; the advance rides on the single assignment audit entry.
func (s *ComplaintService) Assign(ctx context.Context, actor *domain.User, complaintID, assigneeID string) (*domain.Complaint, error) {
	complaint, err := s.loadScoped(ctx, actor, complaintID, access.ActionAssign)
	if err != nil {
		return nil, err
	}
	if complaint.Status == domain.StatusClosed {
		return nil, apperrors.NewValidationError("closed complaints cannot be assigned", nil)
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("assignee", nil)
		}
		return nil, err
	}
	if assignee.TenantID != complaint.TenantID {
		return nil, apperrors.NewNotFound("assignee", nil)
	}
	if assignee.Role != domain.RoleSupport && assignee.Role != domain.RoleManager {
		return nil, apperrors.NewValidationError("assignee must be support staff or a manager", nil)
	}

	oldAssignee := ""
	if complaint.AssignedTo != nil {
		oldAssignee = *complaint.AssignedTo
	}
	oldStatus := complaint.Status

	complaint.AssignedTo = &assignee.ID
	if complaint.Status == domain.StatusOpen {
		complaint.Status = domain.StatusInProgress
	}
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, err
	}

	detail := fmt.Sprintf("Assigned to %s", assignee.Name)
	if oldStatus != complaint.Status {
		detail = fmt.Sprintf("%s; status advanced from %s to %s", detail, oldStatus, complaint.Status)
	}
	if err := s.appendAudit(ctx, actor, complaint, domain.AuditAssigned, detail, oldAssignee, assignee.ID); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, complaint.TenantID)

	s.publishEvent(ctx, actor, complaint, events.EventComplaintAssigned, events.ComplaintAssignedPayload{
		AssigneeID: assignee.ID,
		OldStatus:  oldStatus,
		NewStatus:  complaint.Status,
	})
	return complaint, nil
}

// AddResolution records resolution notes and moves the complaint to
// resolved. An already-resolved complaint only has its notes updated.
func (s *ComplaintService) AddResolution(ctx context.Context, actor *domain.User, complaintID, notes string) (*domain.Complaint, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, apperrors.NewValidationError("resolution notes required", nil)
	}
	complaint, err := s.loadScoped(ctx, actor, complaintID, access.ActionAddResolution)
	if err != nil {
		return nil, err
	}
	if complaint.Status == domain.StatusClosed {
		return nil, apperrors.NewInvalidTransition(string(complaint.Status), string(domain.StatusResolved))
	}

	oldStatus := complaint.Status
	complaint.ResolutionNotes = notes
	if complaint.Status != domain.StatusResolved {
		complaint.Status = domain.StatusResolved
		now := time.Now()
		complaint.ResolvedAt = &now
	}
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, err
	}

	if err := s.appendAudit(ctx, actor, complaint, domain.AuditResolutionAdded,
		"Resolution notes added", string(oldStatus), string(complaint.Status)); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, complaint.TenantID)

	s.publishEvent(ctx, actor, complaint, events.EventComplaintResolutionAdded, events.ComplaintResolutionAddedPayload{
		NotesPreview: stringPreview(notes, 120),
	})
	return complaint, nil
}

// Close lets the submitting consumer confirm a resolved complaint.
func (s *ComplaintService) Close(ctx context.Context, actor *domain.User, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.loadScoped(ctx, actor, complaintID, access.ActionClose)
	if err != nil {
		return nil, err
	}
	if complaint.SubmittedBy != actor.ID {
		return nil, apperrors.NewForbidden("only the complaint owner can close it")
	}
	if complaint.Status != domain.StatusResolved {
		return nil, apperrors.NewInvalidTransition(string(complaint.Status), string(domain.StatusClosed))
	}

	oldStatus := complaint.Status
	complaint.Status = domain.StatusClosed
	now := time.Now()
	complaint.ClosedAt = &now
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, err
	}

	if err := s.appendAudit(ctx, actor, complaint, domain.AuditClosed,
		"Consumer confirmed resolution and closed the complaint",
		string(oldStatus), string(domain.StatusClosed)); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, complaint.TenantID)

	s.publishEvent(ctx, actor, complaint, events.EventComplaintClosed, events.ComplaintClosedPayload{
		ReferenceNumber: complaint.ReferenceNumber,
	})
	return complaint, nil
}

// GetForClose returns the complaint for the close confirmation view,
// applying the same guards as Close without writing anything.
func (s *ComplaintService) GetForClose(ctx context.Context, actor *domain.User, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.loadScoped(ctx, actor, complaintID, access.ActionClose)
	if err != nil {
		return nil, err
	}
	if complaint.SubmittedBy != actor.ID {
		return nil, apperrors.NewForbidden("only the complaint owner can close it")
	}
	return complaint, nil
}

// loadScoped fetches a complaint and applies tenant scoping plus the role
// matrix. Tenant mismatches surface as not-found so other tenants' complaint
// IDs leak nothing; role denials within the tenant surface as forbidden.
func (s *ComplaintService) loadScoped(ctx context.Context, actor *domain.User, complaintID string, action access.Action) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("complaint", nil)
		}
		return nil, err
	}
	if complaint.TenantID != actor.TenantID && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewNotFound("complaint", nil)
	}
	if !access.Decide(actor.Role, actor.TenantID, complaint.TenantID, action) {
		return nil, apperrors.NewForbidden("you do not have permission to perform this action")
	}
	return complaint, nil
}

func (s *ComplaintService) appendAudit(ctx context.Context, actor *domain.User, complaint *domain.Complaint, action domain.AuditAction, detail, oldValue, newValue string) error {
	actorID := actor.ID
	entry := &domain.AuditEntry{
		TenantID:    complaint.TenantID,
		ComplaintID: complaint.ID,
		UserID:      &actorID,
		Action:      action,
		Detail:      detail,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	return s.audit.Create(ctx, entry)
}

func (s *ComplaintService) invalidateStats(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, tenantID)
}

func (s *ComplaintService) publishEvent(ctx context.Context, actor *domain.User, complaint *domain.Complaint, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ComplaintID: complaint.ID,
		TenantID:    complaint.TenantID,
		Actor: events.Actor{
			UserID:   actor.ID,
			TenantID: actor.TenantID,
			Role:     actor.Role,
		},
		Timestamp: time.Now(),
		Payload:   payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateReferenceNumber(slug string) string {
	prefix := strings.ToUpper(slug)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if prefix == "" {
		prefix = "CMP"
	}
	unique := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + "-" + unique
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
