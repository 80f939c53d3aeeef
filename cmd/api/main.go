package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/saas-backend/internal/api/http"
	"github.com/spec-kit/saas-backend/internal/api/http/handlers"
	"github.com/spec-kit/saas-backend/internal/auth"
	"github.com/spec-kit/saas-backend/internal/billing"
	"github.com/spec-kit/saas-backend/internal/config"
	"github.com/spec-kit/saas-backend/internal/crypto"
	"github.com/spec-kit/saas-backend/internal/events"
	"github.com/spec-kit/saas-backend/internal/observability"
	"github.com/spec-kit/saas-backend/internal/persistence"
	"github.com/spec-kit/saas-backend/internal/repository"
	"github.com/spec-kit/saas-backend/internal/service"
	"github.com/spec-kit/saas-backend/internal/worker"
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

	metrics := observability.NewMetrics()

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

	cryptoService, err := crypto.New(cfg.Crypto)
	if err != nil {
		logger.Fatal("failed to init crypto", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	planRepo := repository.NewPlanRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokenManager := auth.NewTokenManager(cfg.Auth)
	usageService := service.NewUsageService(redis.Client)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:         userRepo,
		SubscriptionRepo: subscriptionRepo,
		PlanRepo:         planRepo,
		Tokens:           tokenManager,
		Crypto:           cryptoService,
		Billing:          billing.NewLocalProvider(),
		Dispatcher:       dispatcher,
	})
	userService := service.NewUserService(userRepo)
	planService := service.NewPlanService(planRepo)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, dispatcher)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo, cryptoService, usageService)

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.App.Env == "production"})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService, authService),
		Plans:          handlers.NewPlansHandler(planService),
		Chat:           handlers.NewChatHandler(usageService),
		BillingWebhook: handlers.NewBillingWebhookHandler(subscriptionService),
		AuthMiddleware: authMiddleware,
		UserService:    userService,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
