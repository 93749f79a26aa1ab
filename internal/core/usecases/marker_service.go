package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oskargil/crashatlas/internal/core/domain"
	"github.com/oskargil/crashatlas/internal/core/ports"
	"github.com/oskargil/crashatlas/internal/pkg/geospatial"
)

// MarkerService derives the plottable marker set for a filter.
type MarkerService struct {
	dataset *DatasetService
	cache   ports.CacheService
}

// NewMarkerService creates a MarkerService. cache may be nil.
func NewMarkerService(dataset *DatasetService, cache ports.CacheService) *MarkerService {
	return &MarkerService{dataset: dataset, cache: cache}
}

// Markers returns markers for the records passing the criteria. The marker
// set and the analytics summary for the same criteria always come from the
// same dataset generation.
func (s *MarkerService) Markers(ctx context.Context, c domain.FilterCriteria) []domain.Marker {
	cacheKey := fmt.Sprintf("markers:%d:%s", s.dataset.Generation(), criteriaKey(c))
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var markers []domain.Marker
			if err := json.Unmarshal(data, &markers); err == nil {
				return markers
			}
		}
	}

	markers := domain.BuildMarkers(s.dataset.Filtered(c))

	// Keys embed the dataset generation, so a short TTL is only a memory bound.
	if s.cache != nil {
		if data, err := json.Marshal(markers); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return markers
}

// Nearby returns markers within radiusMeters of a point, closest first.
func (s *MarkerService) Nearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) []domain.Marker {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	box := domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}

	type candidate struct {
		marker   domain.Marker
		distance float64
	}
	var candidates []candidate
	for _, m := range domain.BuildMarkers(s.dataset.Records()) {
		if !box.Contains(m.Point.Lat, m.Point.Lon) {
			continue
		}
		d := geospatial.Haversine(lat, lon, m.Point.Lat, m.Point.Lon)
		if d <= radiusMeters {
			candidates = append(candidates, candidate{marker: m, distance: d})
		}
	}

	// Insertion sort; nearby result sets are small.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].distance < candidates[j-1].distance; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	markers := make([]domain.Marker, len(candidates))
	for i, c := range candidates {
		markers[i] = c.marker
	}
	return markers
}

// criteriaKey renders criteria into a stable cache-key fragment. The inert
// weather fields are excluded: they do not change the result.
func criteriaKey(c domain.FilterCriteria) string {
	return fmt.Sprintf("%d:%d:%s:%s:%d",
		c.YearMin, c.YearMax, c.Type, strings.ToLower(c.Region), c.MinFatalities)
}
