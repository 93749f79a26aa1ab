package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oskargil/crashatlas/internal/core/domain"
	"github.com/oskargil/crashatlas/internal/core/ports"
)

// snapshot is one immutable generation of the dataset. Handlers read a whole
// generation once per request, so markers and analytics derived for that
// request can never mix two generations.
type snapshot struct {
	records    []domain.CrashRecord
	loadedAt   time.Time
	generation int64
}

// DatasetService owns the loaded crash dataset. The dataset is written once
// at load (plus explicit reloads) and is read-only everywhere else, so a
// single atomic pointer is all the synchronization needed.
type DatasetService struct {
	source  ports.DatasetSource
	events  ports.EventPublisher
	current atomic.Pointer[snapshot]
	gen     atomic.Int64
}

// NewDatasetService creates a DatasetService. events may be nil when no
// broker is configured.
func NewDatasetService(source ports.DatasetSource, events ports.EventPublisher) *DatasetService {
	return &DatasetService{source: source, events: events}
}

// Load fetches the dataset and installs the first snapshot. A failure here
// is fatal to the dashboard: nothing renders from a partial load and there is
// no retry.
func (s *DatasetService) Load(ctx context.Context) error {
	records, err := s.source.FetchRecords(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	s.current.Store(&snapshot{records: records, loadedAt: time.Now(), generation: s.gen.Add(1)})
	slog.Info("dataset loaded", "records", len(records))
	return nil
}

// Reload fetches a fresh copy and swaps it in atomically. The previous
// snapshot stays in place if the fetch fails.
func (s *DatasetService) Reload(ctx context.Context) (int, error) {
	records, err := s.source.FetchRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("reload dataset: %w", err)
	}
	s.current.Store(&snapshot{records: records, loadedAt: time.Now(), generation: s.gen.Add(1)})
	slog.Info("dataset reloaded", "records", len(records))

	if s.events != nil {
		if err := s.events.PublishDatasetReloaded(ctx, len(records)); err != nil {
			slog.Warn("publish dataset reload event", "error", err)
		}
	}
	return len(records), nil
}

// Loaded reports whether an initial snapshot has been installed.
func (s *DatasetService) Loaded() bool {
	return s.current.Load() != nil
}

// Records returns the current snapshot's records in upstream order. Callers
// must not mutate the returned slice.
func (s *DatasetService) Records() []domain.CrashRecord {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	return snap.records
}

// Generation identifies the current snapshot. Cache keys embed it so entries
// from a superseded snapshot can never be served.
func (s *DatasetService) Generation() int64 {
	snap := s.current.Load()
	if snap == nil {
		return 0
	}
	return snap.generation
}

// LoadedAt returns the time the current snapshot was installed.
func (s *DatasetService) LoadedAt() time.Time {
	snap := s.current.Load()
	if snap == nil {
		return time.Time{}
	}
	return snap.loadedAt
}

// Filtered derives the subset of the current snapshot passing the criteria.
func (s *DatasetService) Filtered(c domain.FilterCriteria) []domain.CrashRecord {
	return domain.FilterRecords(s.Records(), c)
}

// Types returns the distinct crash types in first-seen order, with "All"
// first, for the dashboard's type select.
func (s *DatasetService) Types() []string {
	types := []string{domain.TypeAll}
	seen := make(map[string]bool)
	for _, r := range s.Records() {
		if r.Type == "" || seen[r.Type] {
			continue
		}
		seen[r.Type] = true
		types = append(types, r.Type)
	}
	return types
}
