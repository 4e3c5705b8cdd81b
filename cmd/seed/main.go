// Command seed loads demo tenants, users, and complaints for local
// development. Running it twice is safe; tenants that already exist are
// skipped.
package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
)

const demoPassword = "password123"

type seeder struct {
	logger     *zap.Logger
	tenants    repository.TenantRepository
	users      repository.UserRepository
	complaints *service.ComplaintService
	bcryptCost int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.PoolHandle() == nil {
		logger.Fatal("POSTGRES_DSN is required for seeding")
	}

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	pool := pg.PoolHandle()
	s := &seeder{
		logger:     logger,
		tenants:    repository.NewTenantRepository(pool),
		users:      repository.NewUserRepository(pool),
		bcryptCost: cfg.Auth.BcryptCost,
	}
	s.complaints = service.NewComplaintService(service.ComplaintDependencies{
		TenantRepo:    s.tenants,
		UserRepo:      s.users,
		ComplaintRepo: repository.NewComplaintRepository(pool),
		AuditRepo:     repository.NewAuditRepository(pool),
	})

	if err := s.run(ctx); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding complete", zap.String("demo_password", demoPassword))
}

func (s *seeder) run(ctx context.Context) error {
	acme, created, err := s.ensureTenant(ctx, "Acme Utilities", "acme")
	if err != nil {
		return err
	}
	if created {
		if err := s.populateTenant(ctx, acme, true); err != nil {
			return err
		}
	}

	techstart, created, err := s.ensureTenant(ctx, "TechStart Retail", "techstart")
	if err != nil {
		return err
	}
	if created {
		if err := s.populateTenant(ctx, techstart, false); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) ensureTenant(ctx context.Context, name, slug string) (*domain.Tenant, bool, error) {
	existing, err := s.tenants.GetBySlug(ctx, slug)
	if err == nil {
		s.logger.Info("tenant already seeded", zap.String("slug", slug))
		return existing, false, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, err
	}

	tenant := &domain.Tenant{Name: name, Slug: slug, Active: true}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, false, err
	}
	s.logger.Info("tenant created", zap.String("slug", slug))
	return tenant, true, nil
}

func (s *seeder) populateTenant(ctx context.Context, tenant *domain.Tenant, withAdmin bool) error {
	consumer, err := s.createUser(ctx, tenant, "Demo Consumer", "consumer@"+tenant.Slug+".test", domain.RoleConsumer)
	if err != nil {
		return err
	}
	helpdesk, err := s.createUser(ctx, tenant, "Demo Helpdesk", "helpdesk@"+tenant.Slug+".test", domain.RoleHelpdesk)
	if err != nil {
		return err
	}
	support, err := s.createUser(ctx, tenant, "Demo Support", "support@"+tenant.Slug+".test", domain.RoleSupport)
	if err != nil {
		return err
	}
	if _, err := s.createUser(ctx, tenant, "Demo Manager", "manager@"+tenant.Slug+".test", domain.RoleManager); err != nil {
		return err
	}
	if withAdmin {
		if _, err := s.createUser(ctx, tenant, "Demo Admin", "admin@"+tenant.Slug+".test", domain.RoleAdmin); err != nil {
			return err
		}
	}

	// A consumer-submitted complaint left open, and a helpdesk-logged one
	// walked through assignment and resolution so the audit trail has depth.
	if _, err := s.complaints.Create(ctx, consumer, service.CreateComplaintInput{
		Title:       "Billing discrepancy on last invoice",
		Description: "I was charged twice for the same service period.",
		Category:    "billing",
		Priority:    domain.PriorityHigh,
	}); err != nil {
		return err
	}

	logged, err := s.complaints.Create(ctx, helpdesk, service.CreateComplaintInput{
		Title:       "Service outage reported by phone",
		Description: "Consumer called in to report intermittent service since Monday.",
		Category:    "service",
		Priority:    domain.PriorityMedium,
		OnBehalfOf:  &consumer.ID,
	})
	if err != nil {
		return err
	}
	if _, err := s.complaints.Assign(ctx, helpdesk, logged.ID, support.ID); err != nil {
		return err
	}
	if _, err := s.complaints.AddResolution(ctx, support, logged.ID,
		"Replaced the faulty line card; service verified stable for 24 hours."); err != nil {
		return err
	}

	s.logger.Info("tenant populated",
		zap.String("slug", tenant.Slug),
		zap.String("logged_reference", logged.ReferenceNumber))
	return nil
}

func (s *seeder) createUser(ctx context.Context, tenant *domain.Tenant, name, email string, role domain.Role) (*domain.User, error) {
	hash, err := auth.HashPassword(demoPassword, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		TenantID:     tenant.ID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
