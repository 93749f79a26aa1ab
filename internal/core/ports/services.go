package ports

import (
	"context"

	"github.com/oskargil/crashatlas/internal/core/domain"
)

// DatasetSource retrieves the full crash dataset in upstream order.
type DatasetSource interface {
	FetchRecords(ctx context.Context) ([]domain.CrashRecord, error)
}

// WeatherProvider fetches current conditions for a coordinate pair.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (domain.WeatherReport, error)
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes dashboard events to a message broker.
type EventPublisher interface {
	PublishDatasetReloaded(ctx context.Context, recordCount int) error
	PublishBroadcast(ctx context.Context, data []byte) error
}
