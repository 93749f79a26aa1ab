package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oskargil/crashatlas/internal/core/domain"
	"github.com/oskargil/crashatlas/internal/core/ports"
)

// AnalyticsService computes summary statistics for a filter.
type AnalyticsService struct {
	dataset *DatasetService
	cache   ports.CacheService
}

// NewAnalyticsService creates an AnalyticsService. cache may be nil.
func NewAnalyticsService(dataset *DatasetService, cache ports.CacheService) *AnalyticsService {
	return &AnalyticsService{dataset: dataset, cache: cache}
}

// Summarize returns the Summary for the records passing the criteria.
func (s *AnalyticsService) Summarize(ctx context.Context, c domain.FilterCriteria) domain.Summary {
	cacheKey := fmt.Sprintf("analytics:%d:%s", s.dataset.Generation(), criteriaKey(c))
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var summary domain.Summary
			if err := json.Unmarshal(data, &summary); err == nil {
				return summary
			}
		}
	}

	summary := domain.Summarize(s.dataset.Filtered(c))

	if s.cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return summary
}
