package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Dashboard      *handlers.DashboardHandler
	Complaints     *handlers.ComplaintsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Get("/", cfg.Dashboard.Show)

	complaints := protected.Group("/complaints")
	complaints.Get("/", cfg.Complaints.List)
	complaints.Get("/new", cfg.Complaints.NewForm)
	complaints.Post("/new", cfg.Complaints.Create)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Post("/:id/status", cfg.Complaints.UpdateStatus)
	complaints.Post("/:id/assign", cfg.Complaints.Assign)
	complaints.Post("/:id/resolution", cfg.Complaints.AddResolution)
	complaints.Get("/:id/close", cfg.Complaints.ConfirmClose)
	complaints.Post("/:id/close", cfg.Complaints.Close)

	admin := protected.Group("/admin")
	admin.Post("/tenants", auth.RequireRole(domain.RoleAdmin), cfg.Admin.CreateTenant)
	admin.Post("/users", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Admin.ProvisionUser)
}
