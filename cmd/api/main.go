package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/oskargil/crashatlas/internal/adapters/http"
	natsadapter "github.com/oskargil/crashatlas/internal/adapters/nats"
	"github.com/oskargil/crashatlas/internal/adapters/openweather"
	"github.com/oskargil/crashatlas/internal/adapters/postgres"
	"github.com/oskargil/crashatlas/internal/adapters/source"
	"github.com/oskargil/crashatlas/internal/adapters/valkey"
	"github.com/oskargil/crashatlas/internal/core/ports"
	"github.com/oskargil/crashatlas/internal/core/usecases"
	"github.com/oskargil/crashatlas/internal/pkg/config"
	"github.com/oskargil/crashatlas/internal/pkg/logging"
	"github.com/oskargil/crashatlas/internal/pkg/metrics"
	"github.com/oskargil/crashatlas/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("crashatlas-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	// NATS
	var events ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		events = nc
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Dataset source: upstream JSON endpoint or the ingested postgres copy
	var datasetSource ports.DatasetSource
	var db *postgres.DB
	switch cfg.Dataset.Source {
	case "postgres":
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		datasetSource = postgres.NewRecordRepo(db)
	default:
		datasetSource = source.NewClient(cfg.Dataset.URL, cfg.Dataset.Timeout(), slog.Default())
	}

	// Weather provider (optional)
	var provider ports.WeatherProvider
	if cfg.Weather.APIKey != "" {
		provider = openweather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey,
			cfg.Weather.Units, cfg.Weather.Timeout(), slog.Default())
	} else {
		slog.Warn("no weather api key configured, popups will report unavailable")
	}

	// Use cases
	datasetSvc := usecases.NewDatasetService(datasetSource, events)
	markerSvc := usecases.NewMarkerService(datasetSvc, cacheSvc)
	analyticsSvc := usecases.NewAnalyticsService(datasetSvc, cacheSvc)
	weatherSvc := usecases.NewWeatherService(provider)

	// Initial load is fatal: the dashboard has nothing to render without it.
	loadCtx, loadCancel := context.WithTimeout(ctx, cfg.Dataset.Timeout())
	if err := datasetSvc.Load(loadCtx); err != nil {
		loadCancel()
		metrics.DatasetLoads.WithLabelValues("failure").Inc()
		log.Fatalf("dataset: %v", err)
	}
	loadCancel()
	metrics.DatasetLoads.WithLabelValues("success").Inc()
	metrics.DatasetRecords.Set(float64(len(datasetSvc.Records())))

	deps := &http.Dependencies{
		Dataset:   datasetSvc,
		Markers:   markerSvc,
		Analytics: analyticsSvc,
		Weather:   weatherSvc,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "CrashAtlas API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
