package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/platform"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/store"
	"github.com/spec-kit/support-desk/internal/worker"
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

	documentStore, closeStore, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open document store", zap.Error(err))
	}
	defer closeStore()

	ticketRepo := repository.NewTicketRepository(documentStore, logger, cfg.Tickets.MaxPerUser)
	ratingRepo := repository.NewRatingRepository(documentStore, logger)

	dispatcher := events.NewInMemoryDispatcher()
	sink := platform.NewLogSink(logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Platform:   sink,
		Dispatcher: dispatcher,
		Logger:     logger,
		Tickets:    cfg.Tickets,
		Features:   cfg.Features,
	})
	ratingService := service.NewRatingService(ratingRepo, ticketRepo, dispatcher, logger)
	statsService := service.NewStatsService(ticketRepo, ratingService)
	notificationService := service.NewNotificationService(
		dispatcher, sink, ticketService, logger, cfg.Tickets, cfg.Features, cfg.Audit)

	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, documentStore),
		Actions: handlers.NewActionsHandler(ticketService, ratingService, metrics),
		Tickets: handlers.NewTicketsHandler(ticketService),
		Stats:   handlers.NewStatsHandler(statsService, ratingService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func openStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (store.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendFile:
		fileStore, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file store", zap.String("dir", cfg.DataDir))
		return fileStore, func() {}, nil

	case config.BackendRedis:
		redisStore := store.NewRedisStore(cfg, logger)
		return redisStore, redisStore.Close, nil

	case config.BackendPostgres:
		pgStore, err := store.NewPostgresStore(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return pgStore, pgStore.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
