package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// Dashboard is the role-specific summary returned by GET /.
type Dashboard struct {
	TenantID         string                       `json:"tenant_id"`
	Role             domain.Role                  `json:"role"`
	Counts           repository.StatusCounts      `json:"counts"`
	RecentComplaints []domain.Complaint           `json:"recent_complaints"`
	MyAssigned       []domain.Complaint           `json:"my_assigned,omitempty"`
}

// StatCache caches dashboard counters per tenant. Implemented on Redis;
// a nil cache disables caching.
type StatCache interface {
	Get(ctx context.Context, tenantID, viewKey string) (*repository.StatusCounts, bool)
	Set(ctx context.Context, tenantID, viewKey string, counts *repository.StatusCounts)
	Invalidate(ctx context.Context, tenantID string)
}

// DashboardService assembles role-specific dashboards.
type DashboardService struct {
	complaints repository.ComplaintRepository
	cache      StatCache
}

// NewDashboardService constructs the service.
func NewDashboardService(complaints repository.ComplaintRepository, cache StatCache) *DashboardService {
	return &DashboardService{complaints: complaints, cache: cache}
}

// Build returns the dashboard for the actor. Consumers see only their own
// complaint counts; staff see tenant-wide counters plus recent complaints;
// support staff additionally see their open assignments.
func (s *DashboardService) Build(ctx context.Context, actor *domain.User) (*Dashboard, error) {
	dashboard := &Dashboard{TenantID: actor.TenantID, Role: actor.Role}

	var submittedBy *string
	viewKey := "tenant"
	if actor.Role == domain.RoleConsumer {
		submittedBy = &actor.ID
		viewKey = "consumer:" + actor.ID
	}

	counts, cached := s.cachedCounts(ctx, actor.TenantID, viewKey)
	if !cached {
		fresh, err := s.complaints.CountByStatus(ctx, actor.TenantID, submittedBy)
		if err != nil {
			return nil, err
		}
		counts = fresh
		if s.cache != nil {
			s.cache.Set(ctx, actor.TenantID, viewKey, counts)
		}
	}
	dashboard.Counts = *counts

	tenantID := actor.TenantID
	recentFilter := repository.ComplaintFilter{TenantID: &tenantID, Limit: 10}
	if actor.Role == domain.RoleConsumer {
		recentFilter.SubmittedBy = &actor.ID
		recentFilter.Limit = 5
	}
	recent, err := s.complaints.ListWithFilter(ctx, recentFilter)
	if err != nil {
		return nil, err
	}
	dashboard.RecentComplaints = recent

	if actor.Role == domain.RoleSupport {
		assigned, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
			TenantID:   &tenantID,
			AssignedTo: &actor.ID,
			Statuses:   []domain.ComplaintStatus{domain.StatusOpen, domain.StatusInProgress, domain.StatusResolved},
			Limit:      5,
		})
		if err != nil {
			return nil, err
		}
		dashboard.MyAssigned = assigned
	}

	return dashboard, nil
}

func (s *DashboardService) cachedCounts(ctx context.Context, tenantID, viewKey string) (*repository.StatusCounts, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, tenantID, viewKey)
}

// redisStatCache implements StatCache on go-redis. Keys are grouped per
// tenant under a version counter so Invalidate is a single INCR.
type redisStatCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStatCache builds a StatCache. Returns nil when client is nil so
// callers can run without Redis.
func NewRedisStatCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) StatCache {
	if client == nil {
		return nil
	}
	return &redisStatCache{client: client, ttl: ttl, logger: logger}
}

func (c *redisStatCache) key(ctx context.Context, tenantID, viewKey string) string {
	version, err := c.client.Get(ctx, "dashboard:version:"+tenantID).Result()
	if err != nil {
		version = "0"
	}
	return fmt.Sprintf("dashboard:%s:%s:%s", tenantID, version, viewKey)
}

func (c *redisStatCache) Get(ctx context.Context, tenantID, viewKey string) (*repository.StatusCounts, bool) {
	raw, err := c.client.Get(ctx, c.key(ctx, tenantID, viewKey)).Bytes()
	if err != nil {
		return nil, false
	}
	var counts repository.StatusCounts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, false
	}
	return &counts, true
}

func (c *redisStatCache) Set(ctx context.Context, tenantID, viewKey string, counts *repository.StatusCounts) {
	raw, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(ctx, tenantID, viewKey), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("dashboard cache set failed", zap.Error(err))
	}
}

func (c *redisStatCache) Invalidate(ctx context.Context, tenantID string) {
	if err := c.client.Incr(ctx, "dashboard:version:"+tenantID).Err(); err != nil {
		c.logger.Debug("dashboard cache invalidate failed", zap.Error(err))
	}
}
