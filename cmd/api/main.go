package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/survey-service/internal/api/http"
	"github.com/spec-kit/survey-service/internal/api/http/handlers"
	"github.com/spec-kit/survey-service/internal/auth"
	"github.com/spec-kit/survey-service/internal/cache"
	"github.com/spec-kit/survey-service/internal/config"
	"github.com/spec-kit/survey-service/internal/events"
	"github.com/spec-kit/survey-service/internal/observability"
	"github.com/spec-kit/survey-service/internal/persistence"
	"github.com/spec-kit/survey-service/internal/repository"
	"github.com/spec-kit/survey-service/internal/service"
	"github.com/spec-kit/survey-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	pool := pg.PoolHandle()
	departmentRepo := repository.NewDepartmentRepository(pool)
	permissionRepo := repository.NewPermissionRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	surveyRepo := repository.NewSurveyRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)

	surveyDeps := service.SurveyDependencies{
		SurveyRepo:   surveyRepo,
		ResponseRepo: responseRepo,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	}
	if redis.Enabled() {
		surveyDeps.Cache = cache.NewSurveyCache(redis.Client, cfg.Redis.SurveyTTL())
	}

	authService := service.NewAuthService(cfg.Auth, userRepo)
	departmentService := service.NewDepartmentService(departmentRepo, logger)
	permissionService := service.NewPermissionService(service.PermissionDependencies{
		PermissionRepo: permissionRepo,
		DepartmentRepo: departmentRepo,
		UserRepo:       userRepo,
		Notifier:       notificationService,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})
	surveyService := service.NewSurveyService(surveyDeps)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.CORSAllowOrigins)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Departments:    handlers.NewDepartmentsHandler(departmentService),
		Permissions:    handlers.NewPermissionsHandler(permissionService),
		Surveys:        handlers.NewSurveysHandler(surveyService),
		Auth:           handlers.NewAuthHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), logger),
		Gatherer:       registry,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
