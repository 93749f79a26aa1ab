package http

import (
	"github.com/nats-io/nats.go"

	"github.com/oskargil/crashatlas/internal/adapters/postgres"
	"github.com/oskargil/crashatlas/internal/adapters/valkey"
	"github.com/oskargil/crashatlas/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. DB, Cache and
// NATS are nil when not configured; handlers degrade rather than fail.
type Dependencies struct {
	Dataset   *usecases.DatasetService
	Markers   *usecases.MarkerService
	Analytics *usecases.AnalyticsService
	Weather   *usecases.WeatherService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
