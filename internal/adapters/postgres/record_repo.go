package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oskargil/crashatlas/internal/core/domain"
)

// RecordRepo implements ports.RecordRepository and ports.DatasetSource over
// the crash_records table. Upstream order is preserved via the position
// column so a postgres-backed load is indistinguishable from an HTTP one.
type RecordRepo struct {
	db *DB
}

// NewRecordRepo creates a repository backed by the shared pool.
func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// ReplaceAll swaps the stored dataset for the given records in one
// transaction. Positions restart from zero.
func (r *RecordRepo) ReplaceAll(ctx context.Context, records []domain.CrashRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE crash_records`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	batch := &pgx.Batch{}
	for i, rec := range records {
		batch.Queue(
			`INSERT INTO crash_records (position, location, year, type, fatalities, country, latitude, longitude)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			i, rec.Location, rec.Year, rec.Type, rec.Fatalities, rec.Country, rec.Latitude, rec.Longitude,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListAll returns all records in stored (upstream) order.
func (r *RecordRepo) ListAll(ctx context.Context) ([]domain.CrashRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT location, year, type, fatalities, country, latitude, longitude
		 FROM crash_records ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.CrashRecord
	for rows.Next() {
		var rec domain.CrashRecord
		if err := rows.Scan(&rec.Location, &rec.Year, &rec.Type, &rec.Fatalities,
			&rec.Country, &rec.Latitude, &rec.Longitude); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (r *RecordRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM crash_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// FetchRecords satisfies ports.DatasetSource so the API can boot from the
// ingested copy instead of the upstream endpoint.
func (r *RecordRepo) FetchRecords(ctx context.Context) ([]domain.CrashRecord, error) {
	return r.ListAll(ctx)
}
