package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/triage-service/internal/api/http"
	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/persistence"
	"github.com/spec-kit/triage-service/internal/priority"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/service"
	"github.com/spec-kit/triage-service/internal/sla"
	"github.com/spec-kit/triage-service/internal/worker"
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

	calendar := calendarFromConfig(cfg.Sla)
	mapper, err := sla.NewMapper(calendar)
	if err != nil {
		logger.Fatal("invalid business-hours calendar", zap.Error(err))
	}
	engine := priority.NewEngine(priority.DefaultCatalog())

	var recordRepo repository.TriageRecordRepository
	if pool := pg.PoolHandle(); pool != nil {
		recordRepo = repository.NewTriageRecordRepository(pool)
	} else {
		logger.Warn("no postgres pool available; triage records will not be persisted")
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	triageService := service.NewTriageService(service.TriageDependencies{
		Engine:     engine,
		Mapper:     mapper,
		RecordRepo: recordRepo,
		Cache:      redis,
		CacheTTL:   cfg.Cache.TTL(),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	hashedSecret, err := auth.HashSecret(cfg.Auth.ClientSecret, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash client secret", zap.Error(err))
	}
	clients := auth.NewClientStore(map[string]string{cfg.Auth.ClientID: hashedSecret})
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(tokens, clients)
	triageHandler := handlers.NewTriageHandler(triageService, calendar)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		Triage:         triageHandler,
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

func calendarFromConfig(cfg config.SlaConfig) sla.BusinessCalendar {
	weekdays := make([]time.Weekday, 0, len(cfg.BusinessWeekdays))
	for _, day := range cfg.BusinessWeekdays {
		weekdays = append(weekdays, time.Weekday(day))
	}
	return sla.BusinessCalendar{
		StartHour: cfg.BusinessHoursStart,
		EndHour:   cfg.BusinessHoursEnd,
		Weekdays:  weekdays,
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
