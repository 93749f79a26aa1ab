package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/oskargil/crashatlas/internal/core/domain"
	"github.com/oskargil/crashatlas/internal/core/usecases"
)

// --- Mock CacheService ---

type mockCache struct {
	store map[string][]byte
	gets  int
	hits  int
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.gets++
	if data, ok := m.store[key]; ok {
		m.hits++
		return data, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	return nil
}

// --- Tests ---

func TestAnalyticsService_Summarize(t *testing.T) {
	dataset := loadedDataset(t, testRecords())
	svc := usecases.NewAnalyticsService(dataset, nil)

	summary := svc.Summarize(context.Background(), domain.NewFilterCriteria())
	if summary.Count != 3 {
		t.Errorf("expected count 3, got %d", summary.Count)
	}
	if summary.TotalFatalities != 590 {
		t.Errorf("expected 590 total fatalities, got %d", summary.TotalFatalities)
	}
	if summary.AverageFatalities != 196.7 {
		t.Errorf("expected average 196.7, got %g", summary.AverageFatalities)
	}
}

func TestAnalyticsService_SummarizeFiltered(t *testing.T) {
	dataset := loadedDataset(t, testRecords())
	svc := usecases.NewAnalyticsService(dataset, nil)

	c := domain.NewFilterCriteria()
	c.Type = "Military"
	summary := svc.Summarize(context.Background(), c)
	if summary.Count != 1 || summary.TotalFatalities != 7 {
		t.Errorf("unexpected filtered summary: %+v", summary)
	}
}

func TestAnalyticsService_CacheRoundTrip(t *testing.T) {
	dataset := loadedDataset(t, testRecords())
	cache := newMockCache()
	svc := usecases.NewAnalyticsService(dataset, cache)

	first := svc.Summarize(context.Background(), domain.NewFilterCriteria())
	second := svc.Summarize(context.Background(), domain.NewFilterCriteria())

	if cache.hits != 1 {
		t.Errorf("expected exactly one cache hit, got %d", cache.hits)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("cached summary diverged: %s vs %s", a, b)
	}
}

func TestAnalyticsService_CacheKeyedByGeneration(t *testing.T) {
	dataset := loadedDataset(t, testRecords())
	cache := newMockCache()
	svc := usecases.NewAnalyticsService(dataset, cache)

	svc.Summarize(context.Background(), domain.NewFilterCriteria())
	if _, err := dataset.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	svc.Summarize(context.Background(), domain.NewFilterCriteria())

	if cache.hits != 0 {
		t.Errorf("stale generation must not be served from cache, got %d hits", cache.hits)
	}
	if len(cache.store) != 2 {
		t.Errorf("expected two generation-scoped entries, got %d", len(cache.store))
	}
}
