package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// fakeTenantRepo implements repository.TenantRepository in memory.
type fakeTenantRepo struct {
	tenants map[string]*domain.Tenant
}

func (f *fakeTenantRepo) Create(_ context.Context, tenant *domain.Tenant) error {
	tenant.ID = fmt.Sprintf("tenant-%d", len(f.tenants)+1)
	f.tenants[tenant.ID] = tenant
	return nil
}

func (f *fakeTenantRepo) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	tenant, ok := f.tenants[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return tenant, nil
}

func (f *fakeTenantRepo) GetBySlug(_ context.Context, slug string) (*domain.Tenant, error) {
	for _, tenant := range f.tenants {
		if tenant.Slug == slug {
			return tenant, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// fakeUserRepo implements repository.UserRepository in memory.
type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ListByTenantAndRoles(_ context.Context, tenantID string, roles []domain.Role) ([]domain.User, error) {
	var result []domain.User
	for _, user := range f.users {
		if user.TenantID != tenantID {
			continue
		}
		for _, role := range roles {
			if user.Role == role {
				result = append(result, *user)
				break
			}
		}
	}
	return result, nil
}

// fakeComplaintRepo implements repository.ComplaintRepository in memory.
type fakeComplaintRepo struct {
	complaints map[string]*domain.Complaint
}

func (f *fakeComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	complaint.ID = fmt.Sprintf("complaint-%d", len(f.complaints)+1)
	stored := *complaint
	f.complaints[complaint.ID] = &stored
	return nil
}

// Update mirrors the SQL implementation: tenant_id and submitted_by are
// never written back.
func (f *fakeComplaintRepo) Update(_ context.Context, complaint *domain.Complaint) error {
	stored, ok := f.complaints[complaint.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	updated := *complaint
	updated.TenantID = stored.TenantID
	updated.SubmittedBy = stored.SubmittedBy
	f.complaints[complaint.ID] = &updated
	return nil
}

func (f *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	complaint, ok := f.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *complaint
	return &copied, nil
}

func (f *fakeComplaintRepo) GetByReference(_ context.Context, reference string) (*domain.Complaint, error) {
	for _, complaint := range f.complaints {
		if complaint.ReferenceNumber == reference {
			copied := *complaint
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeComplaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for _, complaint := range f.complaints {
		if filter.TenantID != nil && complaint.TenantID != *filter.TenantID {
			continue
		}
		if filter.SubmittedBy != nil && complaint.SubmittedBy != *filter.SubmittedBy {
			continue
		}
		if filter.AssignedTo != nil && (complaint.AssignedTo == nil || *complaint.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, complaint.Status) {
			continue
		}
		result = append(result, *complaint)
	}
	return result, nil
}

func (f *fakeComplaintRepo) CountByStatus(_ context.Context, tenantID string, submittedBy *string) (*repository.StatusCounts, error) {
	counts := &repository.StatusCounts{}
	for _, complaint := range f.complaints {
		if complaint.TenantID != tenantID {
			continue
		}
		if submittedBy != nil && complaint.SubmittedBy != *submittedBy {
			continue
		}
		counts.Total++
		switch complaint.Status {
		case domain.StatusOpen:
			counts.Open++
		case domain.StatusInProgress:
			counts.InProgress++
		case domain.StatusResolved:
			counts.Resolved++
		case domain.StatusClosed:
			counts.Closed++
		}
		if complaint.AssignedTo == nil && complaint.Status != domain.StatusClosed {
			counts.Unassigned++
		}
	}
	return counts, nil
}

func containsStatus(statuses []domain.ComplaintStatus, status domain.ComplaintStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// fakeAuditRepo implements repository.AuditRepository in memory.
type fakeAuditRepo struct {
	entries []domain.AuditEntry
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	entry.ID = fmt.Sprintf("audit-%d", len(f.entries)+1)
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) ListByComplaint(_ context.Context, complaintID string, _, _ int) ([]domain.AuditEntry, error) {
	var result []domain.AuditEntry
	for _, entry := range f.entries {
		if entry.ComplaintID == complaintID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeAuditRepo) countFor(complaintID string) int {
	count := 0
	for _, entry := range f.entries {
		if entry.ComplaintID == complaintID {
			count++
		}
	}
	return count
}

type fixture struct {
	service *ComplaintService
	audit   *fakeAuditRepo

	tenantA   *domain.Tenant
	tenantB   *domain.Tenant
	consumerA *domain.User
	consumer2 *domain.User
	helpdeskA *domain.User
	supportA  *domain.User
	managerA  *domain.User
	adminA    *domain.User
	consumerB *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tenants := &fakeTenantRepo{tenants: map[string]*domain.Tenant{}}
	users := &fakeUserRepo{users: map[string]*domain.User{}}
	complaints := &fakeComplaintRepo{complaints: map[string]*domain.Complaint{}}
	audit := &fakeAuditRepo{}
	ctx := context.Background()

	f := &fixture{audit: audit}
	f.tenantA = &domain.Tenant{Name: "Acme Corporation", Slug: "acme", Active: true}
	require.NoError(t, tenants.Create(ctx, f.tenantA))
	f.tenantB = &domain.Tenant{Name: "TechStart Inc", Slug: "techstart", Active: true}
	require.NoError(t, tenants.Create(ctx, f.tenantB))

	mkUser := func(tenant *domain.Tenant, role domain.Role, name string) *domain.User {
		user := &domain.User{TenantID: tenant.ID, Name: name, Email: name + "@example.com", Role: role}
		require.NoError(t, users.Create(ctx, user))
		return user
	}
	f.consumerA = mkUser(f.tenantA, domain.RoleConsumer, "alice")
	f.consumer2 = mkUser(f.tenantA, domain.RoleConsumer, "bob")
	f.helpdeskA = mkUser(f.tenantA, domain.RoleHelpdesk, "sarah")
	f.supportA = mkUser(f.tenantA, domain.RoleSupport, "mike")
	f.managerA = mkUser(f.tenantA, domain.RoleManager, "john")
	f.adminA = mkUser(f.tenantA, domain.RoleAdmin, "root")
	f.consumerB = mkUser(f.tenantB, domain.RoleConsumer, "charlie")

	f.service = NewComplaintService(ComplaintDependencies{
		TenantRepo:    tenants,
		UserRepo:      users,
		ComplaintRepo: complaints,
		AuditRepo:     audit,
	})
	return f
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func TestCreateComplaintByConsumer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{
		Title:       "Website not loading",
		Description: "500 errors since yesterday",
		Category:    "Technical",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOpen, complaint.Status)
	assert.Equal(t, f.tenantA.ID, complaint.TenantID)
	assert.Equal(t, f.consumerA.ID, complaint.SubmittedBy)
	assert.Nil(t, complaint.LoggedBy)
	assert.Equal(t, domain.PriorityMedium, complaint.Priority)
	assert.True(t, strings.HasPrefix(complaint.ReferenceNumber, "ACM-"), "reference %q", complaint.ReferenceNumber)
	assert.Equal(t, 1, f.audit.countFor(complaint.ID))
}

func TestCreateComplaintOnBehalfByHelpdesk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.helpdeskA, CreateComplaintInput{
		Title:       "Billing discrepancy",
		Description: "Charged twice this month",
		OnBehalfOf:  &f.consumerA.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, f.consumerA.ID, complaint.SubmittedBy)
	require.NotNil(t, complaint.LoggedBy)
	assert.Equal(t, f.helpdeskA.ID, *complaint.LoggedBy)
}

func TestCreateComplaintOnBehalfRequiresConsumerTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.helpdeskA, CreateComplaintInput{
		Title:       "x",
		Description: "y",
		OnBehalfOf:  &f.supportA.ID,
	})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestCreateComplaintOnBehalfCrossTenantHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.helpdeskA, CreateComplaintInput{
		Title:       "x",
		Description: "y",
		OnBehalfOf:  &f.consumerB.ID,
	})
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestGetCreateOptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	options, err := f.service.GetCreateOptions(ctx, f.consumerA)
	require.NoError(t, err)
	assert.Len(t, options.Priorities, 3)
	assert.Empty(t, options.Consumers)

	options, err = f.service.GetCreateOptions(ctx, f.helpdeskA)
	require.NoError(t, err)
	consumerIDs := make([]string, 0, len(options.Consumers))
	for _, consumer := range options.Consumers {
		consumerIDs = append(consumerIDs, consumer.ID)
	}
	assert.ElementsMatch(t, []string{f.consumerA.ID, f.consumer2.ID}, consumerIDs)

	_, err = f.service.GetCreateOptions(ctx, f.supportA)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestCreateComplaintValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: " ", Description: "y"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "x", Description: "y", Priority: "urgent"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

// The end-to-end lifecycle scenario: create, resolve, consumer confirms.
// Each step appends exactly one audit entry, and a user from another tenant
// is told the complaint does not exist.
func TestComplaintLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{
		Title:       "Cannot reset password",
		Description: "Reset email never arrives",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, complaint.Status)
	assert.Equal(t, 1, f.audit.countFor(complaint.ID))

	complaint, err = f.service.AddResolution(ctx, f.supportA, complaint.ID, "Mail server queue flushed, reset email delivered")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, complaint.Status)
	assert.NotNil(t, complaint.ResolvedAt)
	assert.Equal(t, 2, f.audit.countFor(complaint.ID))

	complaint, err = f.service.Close(ctx, f.consumerA, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, complaint.Status)
	assert.NotNil(t, complaint.ClosedAt)
	assert.Equal(t, 3, f.audit.countFor(complaint.ID))

	_, err = f.service.Get(ctx, f.consumerB, complaint.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	// Tenant ownership never changed across the lifecycle.
	assert.Equal(t, f.tenantA.ID, complaint.TenantID)
}

func TestUpdateStatusForward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	complaint, err = f.service.UpdateStatus(ctx, f.helpdeskA, complaint.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, complaint.Status)
	assert.Equal(t, 2, f.audit.countFor(complaint.ID))

	complaint, err = f.service.UpdateStatus(ctx, f.supportA, complaint.ID, domain.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, complaint.Status)
	assert.Equal(t, 3, f.audit.countFor(complaint.ID))
}

func TestUpdateStatusRejectsBackwardAndSkip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, f.supportA, complaint.ID, domain.StatusResolved)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))

	complaint, err = f.service.UpdateStatus(ctx, f.helpdeskA, complaint.ID, domain.StatusInProgress)
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, f.helpdeskA, complaint.ID, domain.StatusOpen)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))

	// No admin override: the lifecycle is forward-only for everyone.
	_, err = f.service.UpdateStatus(ctx, f.adminA, complaint.ID, domain.StatusOpen)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))

	// Failed attempts must not leave audit entries behind.
	assert.Equal(t, 2, f.audit.countFor(complaint.ID))
}

func TestUpdateStatusRoleGates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, f.consumerA, complaint.ID, domain.StatusInProgress)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	complaint, err = f.service.UpdateStatus(ctx, f.helpdeskA, complaint.ID, domain.StatusInProgress)
	require.NoError(t, err)

	// Helpdesk may advance work but not mark it resolved.
	_, err = f.service.UpdateStatus(ctx, f.helpdeskA, complaint.ID, domain.StatusResolved)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	// Nobody closes through the status endpoint, not even a manager.
	_, err = f.service.UpdateStatus(ctx, f.managerA, complaint.ID, domain.StatusClosed)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestAssignAdvancesOpenComplaint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	complaint, err = f.service.Assign(ctx, f.helpdeskA, complaint.ID, f.supportA.ID)
	require.NoError(t, err)
	require.NotNil(t, complaint.AssignedTo)
	assert.Equal(t, f.supportA.ID, *complaint.AssignedTo)
	assert.Equal(t, domain.StatusInProgress, complaint.Status)
	// Create + assign: the status advance rides on the assignment entry.
	assert.Equal(t, 2, f.audit.countFor(complaint.ID))
}

func TestAssignRejectsConsumerAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.service.Assign(ctx, f.managerA, complaint.ID, f.consumer2.ID)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestAssignRejectsCrossTenantAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.service.Assign(ctx, f.managerA, complaint.ID, f.consumerB.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestAssignDeniedForSupport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.service.Assign(ctx, f.supportA, complaint.ID, f.supportA.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestCloseRequiresOwnerAndResolvedState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.service.Close(ctx, f.consumerA, complaint.ID)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))

	complaint, err = f.service.AddResolution(ctx, f.supportA, complaint.ID, "fixed")
	require.NoError(t, err)

	_, err = f.service.Close(ctx, f.consumer2, complaint.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = f.service.Close(ctx, f.supportA, complaint.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	complaint, err = f.service.Close(ctx, f.consumerA, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, complaint.Status)
}

func TestConsumerCannotViewOthersComplaint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.service.Get(ctx, f.consumer2, complaint.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestAdminBypassesTenantScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	adminB := &domain.User{ID: "admin-b", TenantID: f.tenantB.ID, Role: domain.RoleAdmin, Name: "other-admin"}
	detail, err := f.service.Get(ctx, adminB, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, complaint.ID, detail.Complaint.ID)
}

func TestListScopesByTenantAndRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "a1", Description: "d"})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, f.consumer2, CreateComplaintInput{Title: "a2", Description: "d"})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, f.consumerB, CreateComplaintInput{Title: "b1", Description: "d"})
	require.NoError(t, err)

	own, err := f.service.List(ctx, f.consumerA, ComplaintListFilter{})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	tenantWide, err := f.service.List(ctx, f.supportA, ComplaintListFilter{})
	require.NoError(t, err)
	assert.Len(t, tenantWide, 2)

	all, err := f.service.List(ctx, f.adminA, ComplaintListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetIncludesAuditTrailAndAssignableStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.service.Create(ctx, f.consumerA, CreateComplaintInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	detail, err := f.service.Get(ctx, f.managerA, complaint.ID)
	require.NoError(t, err)
	assert.Len(t, detail.AuditTrail, 1)
	assert.Equal(t, domain.AuditCreated, detail.AuditTrail[0].Action)

	staffIDs := make([]string, 0, len(detail.AssignableStaff))
	for _, staff := range detail.AssignableStaff {
		staffIDs = append(staffIDs, staff.ID)
	}
	assert.ElementsMatch(t, []string{f.supportA.ID, f.managerA.ID}, staffIDs)
}
