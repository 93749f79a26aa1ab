package ports

import (
	"context"

	"github.com/oskargil/crashatlas/internal/core/domain"
)

// RecordRepository persists crash records. It backs the postgres dataset
// source; the API never writes through it.
type RecordRepository interface {
	ReplaceAll(ctx context.Context, records []domain.CrashRecord) error
	ListAll(ctx context.Context) ([]domain.CrashRecord, error)
	Count(ctx context.Context) (int, error)
}
