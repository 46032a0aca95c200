package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civicwatch/hazard-service/internal/api/http"
	"github.com/civicwatch/hazard-service/internal/api/http/handlers"
	"github.com/civicwatch/hazard-service/internal/auth"
	"github.com/civicwatch/hazard-service/internal/config"
	"github.com/civicwatch/hazard-service/internal/events"
	"github.com/civicwatch/hazard-service/internal/observability"
	"github.com/civicwatch/hazard-service/internal/persistence"
	"github.com/civicwatch/hazard-service/internal/repository"
	"github.com/civicwatch/hazard-service/internal/service"
	"github.com/civicwatch/hazard-service/internal/verification"
	"github.com/civicwatch/hazard-service/internal/worker"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics(cfg.App.Name)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	verificationRepo := repository.NewVerificationRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	authorityRepo := repository.NewAuthorityRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	dispatcher := events.NewRedisDispatcher(redis.Client, cfg.Redis.EventQueue, logger)
	locker := service.NewTicketLocker()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:      ticketRepo,
		MessageRepo:     messageRepo,
		ParticipantRepo: participantRepo,
		AssignmentRepo:  assignmentRepo,
		HistoryRepo:     historyRepo,
		Dispatcher:      dispatcher,
		Locker:          locker,
		SLATable:        cfg.SLA.Table(),
		Logger:          logger,
	})
	participantService := service.NewParticipantService(ticketService, participantRepo, userRepo, locker)
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		Tickets:         ticketService,
		TicketRepo:      ticketRepo,
		EscalationRepo:  escalationRepo,
		AuthorityRepo:   authorityRepo,
		Tx:              txRunner,
		Locker:          locker,
		Metrics:         metrics,
		EscalatedWindow: cfg.SLA.EscalatedWindow(),
	})
	assignmentService := service.NewAssignmentService(ticketService, assignmentRepo, authorityRepo, ticketRepo, locker)

	collector := verification.NewCollector(verification.InMemoryLayers(), cfg.Scoring.LayerTimeout, logger)
	aggregator := verification.NewAggregator(cfg.Scoring.Weights())
	verificationService := service.NewVerificationService(service.VerificationDependencies{
		ReportRepo:       reportRepo,
		VerificationRepo: verificationRepo,
		Collector:        collector,
		Aggregator:       aggregator,
		Tickets:          ticketService,
		Metrics:          metrics,
		Logger:           logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationWorker := worker.NewNotificationWorker(redis.Client, cfg.Redis.EventQueue, notificationService, logger)
	go notificationWorker.Run(ctx)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService, participantService),
		Escalations:    handlers.NewEscalationsHandler(escalationService),
		Authorities:    handlers.NewAuthoritiesHandler(assignmentService),
		Verifications:  handlers.NewVerificationsHandler(verificationService),
		AuthMiddleware: authMiddleware,
		AuthCfg:        cfg.Auth,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
