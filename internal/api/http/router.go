package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/civicwatch/hazard-service/internal/api/http/handlers"
	"github.com/civicwatch/hazard-service/internal/auth"
	"github.com/civicwatch/hazard-service/internal/config"
	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Escalations    *handlers.EscalationsHandler
	Authorities    *handlers.AuthoritiesHandler
	Verifications  *handlers.VerificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	AuthCfg        config.AuthConfig
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))

	internal := app.Group("/internal", auth.RequireServiceKey(cfg.AuthCfg))
	internal.Post("/verifications", cfg.Verifications.VerifyReport)
	internal.Get("/verifications/:reportId", cfg.Verifications.History)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Post("/:id/messages", cfg.Tickets.SendMessage)
	tickets.Get("/:id/threads", cfg.Tickets.ThreadCounts)
	tickets.Patch("/:id/status", auth.RequireStaff(), cfg.Tickets.UpdateStatus)
	tickets.Get("/:id/participants", cfg.Tickets.ListParticipants)
	tickets.Post("/:id/participants", auth.RequireStaff(), cfg.Tickets.AddParticipant)
	tickets.Delete("/:id/participants/:userId", auth.RequireStaff(), cfg.Tickets.RemoveParticipant)
	tickets.Get("/:id/history", auth.RequireStaff(), cfg.Tickets.ListHistory)
	tickets.Get("/:id/escalation-targets", auth.RequireStaff(), cfg.Escalations.GetTargets)
	tickets.Post("/:id/escalate", auth.RequireStaff(), cfg.Escalations.Escalate)
	tickets.Get("/:id/escalations", auth.RequireStaff(), cfg.Escalations.History)
	tickets.Post("/:id/authority", auth.RequireStaff(), cfg.Authorities.Assign)

	authorities := app.Group("/authorities", cfg.AuthMiddleware.Handle)
	authorities.Get("/worklist", auth.RequireRole(domain.RoleAuthority, domain.RoleAdmin), cfg.Authorities.Worklist)
	authorities.Get("/", auth.RequireStaff(), cfg.Authorities.Search)
}
