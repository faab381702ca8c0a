package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/facilityops/maintenance-service/internal/api/http"
	"github.com/facilityops/maintenance-service/internal/api/http/handlers"
	"github.com/facilityops/maintenance-service/internal/auth"
	"github.com/facilityops/maintenance-service/internal/config"
	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/events"
	"github.com/facilityops/maintenance-service/internal/observability"
	"github.com/facilityops/maintenance-service/internal/persistence"
	"github.com/facilityops/maintenance-service/internal/repository"
	"github.com/facilityops/maintenance-service/internal/repository/memory"
	"github.com/facilityops/maintenance-service/internal/service"
	"github.com/facilityops/maintenance-service/internal/workflow"
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

	stores := buildStores(pg, cfg, logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	events.NewRedisBridge(redis.Client, cfg.Events.RedisChannel, logger).Attach(dispatcher)

	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notifications.RegisterHandlers()

	engine := workflow.NewEngine(workflow.Dependencies{
		TicketStore: stores.tickets,
		AuditStore:  stores.audits,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		TicketStore:     stores.tickets,
		CommentStore:    stores.comments,
		AttachmentStore: stores.attachments,
	})
	authService := service.NewAuthService(cfg.Auth, stores.users)
	authMiddleware := auth.NewMiddleware(authService.TokenManager(), stores.users)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Requests:       handlers.NewRequestsHandler(engine, requestService),
		Reference:      handlers.NewReferenceHandler(stores.reference),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

type storeSet struct {
	tickets     repository.TicketStore
	audits      repository.AuditStore
	comments    repository.CommentStore
	attachments repository.AttachmentStore
	users       repository.UserStore
	reference   repository.ReferenceStore
}

// buildStores wires postgres-backed stores when a pool is available and
// falls back to the in-memory set (with development seed data) otherwise.
func buildStores(pg *persistence.Postgres, cfg *config.Config, logger *zap.Logger) storeSet {
	pool := pg.PoolHandle()
	if pool != nil {
		return storeSet{
			tickets:     repository.NewTicketStore(pool),
			audits:      repository.NewAuditStore(pool),
			comments:    repository.NewCommentStore(pool),
			attachments: repository.NewAttachmentStore(pool),
			users:       repository.NewUserStore(pool),
			reference:   repository.NewReferenceStore(pool),
		}
	}

	logger.Warn("running with in-memory stores; all data is lost on shutdown")
	store := memory.NewStore()
	users := memory.NewUserStore()
	seedDevUsers(users, cfg.Auth.BcryptCost, logger)
	return storeSet{
		tickets:     store,
		audits:      store,
		comments:    memory.NewCommentStore(),
		attachments: memory.NewAttachmentStore(),
		users:       users,
		reference:   memory.NewReferenceStore().SeedDefaults(),
	}
}

func seedDevUsers(users *memory.UserStore, bcryptCost int, logger *zap.Logger) {
	seeds := []struct {
		name  string
		email string
		role  domain.Role
	}{
		{"Admin", "admin@example.com", domain.RoleAdmin},
		{"Supervisor", "supervisor@example.com", domain.RoleSupervisor},
		{"Technician", "technician@example.com", domain.RoleTechnician},
		{"Requestor", "requestor@example.com", domain.RoleRequestor},
	}
	for _, seed := range seeds {
		hash, err := auth.HashPassword("password", bcryptCost)
		if err != nil {
			logger.Error("failed to hash seed password", zap.Error(err))
			continue
		}
		users.Seed(&domain.User{
			Name:         seed.name,
			Email:        seed.email,
			PasswordHash: hash,
			Roles:        []domain.Role{seed.role},
			Active:       true,
		})
		logger.Info("seeded development user", zap.String("email", seed.email), zap.String("role", string(seed.role)))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
