package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/oskargil/crashatlas/internal/adapters/postgres"
	"github.com/oskargil/crashatlas/internal/adapters/source"
	"github.com/oskargil/crashatlas/internal/pkg/config"
	"github.com/oskargil/crashatlas/internal/pkg/logging"
)

// ingest fetches the upstream crash dataset and replaces the postgres copy.
// Run it on a schedule (or by hand) when serving the API with
// dataset.source=postgres.
func main() {
	cfg, err := config.Load("crashatlas-ingest")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	client := source.NewClient(cfg.Dataset.URL, cfg.Dataset.Timeout(), slog.Default())
	records, err := client.FetchRecords(ctx)
	if err != nil {
		log.Fatalf("fetch dataset: %v", err)
	}

	repo := postgres.NewRecordRepo(db)
	if err := repo.ReplaceAll(ctx, records); err != nil {
		log.Fatalf("store dataset: %v", err)
	}

	slog.Info("dataset ingested", "records", len(records), "url", cfg.Dataset.URL)
}
