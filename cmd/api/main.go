package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docgateway/docs"
	"docgateway/internal/config"
	"docgateway/internal/database"
	"docgateway/internal/database/migration"
	handlers "docgateway/internal/http/handler"
	"docgateway/internal/http/middleware"
	"docgateway/internal/logging"
	"docgateway/internal/metrics"
	"docgateway/internal/otel"
	"docgateway/internal/repository"
	"docgateway/internal/repository/postgres"
	"docgateway/internal/service"
	"docgateway/internal/storage"
)

// @title Document Gateway API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("gateway stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) error {
	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	store, err := newStore(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}
	logger.Info("blob store ready", zap.String("backend", cfg.Blob.Backend), zap.String("folder", cfg.Gateway.Folder))

	// The ledger is optional: without DB_HOST the gateway runs on the blob store alone.
	var (
		db     *sql.DB
		ledger repository.DocumentRepository
		finder service.Finder
	)
	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to ledger database: %w", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			return err
		}
		repo := postgres.NewDocumentPostgres(db)
		ledger = repo
		finder = service.NewFinder(repo)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	gatewayMetrics, err := metrics.NewGateway(reg)
	if err != nil {
		return fmt.Errorf("register gateway metrics: %w", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	svc := handlers.Services{
		Ingestor: service.NewIngestor(store, ledger, cfg.Gateway, logger, gatewayMetrics),
		Lister:   service.NewAggregator(store, cfg.Gateway, logger, gatewayMetrics),
		Finder:   finder,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.UploadMaxBytes,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, db, svc, logger)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.WriteTimeout+5*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

func newStore(ctx context.Context, cfg config.BlobConfig) (storage.Store, error) {
	switch cfg.Backend {
	case "s3":
		return storage.NewS3(ctx, cfg.S3, cfg.PublicBaseURL)
	case "memory":
		return storage.NewMemory(cfg.PublicBaseURL), nil
	default:
		return storage.NewMinIO(cfg.MinIO, cfg.PublicBaseURL)
	}
}
