package usecases

import (
	"context"
	"log/slog"

	"github.com/oskargil/crashatlas/internal/core/domain"
	"github.com/oskargil/crashatlas/internal/core/ports"
)

// WeatherService fetches present-day conditions for a marker popup.
//
// Every call is a fresh provider request: no retry, no caching, no
// cancellation beyond the transport timeout. The popup is best-effort by
// contract, and concurrent fetches for different markers stay independent.
type WeatherService struct {
	provider ports.WeatherProvider
}

// NewWeatherService creates a WeatherService. provider may be nil when no
// API key is configured; every lookup then reports unavailable.
func NewWeatherService(provider ports.WeatherProvider) *WeatherService {
	return &WeatherService{provider: provider}
}

// Current returns the conditions at the given coordinates and whether they
// are available. Provider failures are recovered here and surfaced only as
// unavailability; they are never an error to the caller.
func (s *WeatherService) Current(ctx context.Context, lat, lon float64) (domain.WeatherReport, bool) {
	if s.provider == nil {
		return domain.WeatherReport{}, false
	}

	report, err := s.provider.Current(ctx, lat, lon)
	if err != nil {
		slog.Warn("weather fetch failed", "lat", lat, "lon", lon, "error", err)
		return domain.WeatherReport{}, false
	}
	return report, true
}
