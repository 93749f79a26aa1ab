package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oskargil/crashatlas/internal/core/domain"
	"github.com/oskargil/crashatlas/internal/pkg/metrics"
)

// DefaultBaseURL is the OpenWeatherMap current-conditions endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Client implements ports.WeatherProvider using an OpenWeatherMap-compatible
// API. It reports current weather; there is no historical lookup, so a popup
// shows today's conditions at the crash site regardless of the crash year.
type Client struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a weather client. An empty baseURL falls back to
// DefaultBaseURL; units defaults to metric.
func NewClient(baseURL, apiKey, units string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if units == "" {
		units = "metric"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		units:   units,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Current fetches conditions for the given coordinates. Any non-2xx status
// or decode failure is a plain error; the caller treats all failures
// uniformly as "unavailable".
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.WeatherReport, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', -1, 64)},
		"appid": {c.apiKey},
		"units": {c.units},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.WeatherFetches.WithLabelValues("error").Inc()
		return domain.WeatherReport{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.WeatherFetches.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.WeatherReport{}, fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	var owResp response
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		metrics.WeatherFetches.WithLabelValues("error").Inc()
		return domain.WeatherReport{}, fmt.Errorf("decode response: %w", err)
	}

	metrics.WeatherFetches.WithLabelValues("success").Inc()

	report := domain.WeatherReport{
		TemperatureC: owResp.Main.Temp,
		HumidityPct:  owResp.Main.Humidity,
		WindSpeedMS:  owResp.Wind.Speed,
	}
	if len(owResp.Weather) > 0 {
		report.Description = owResp.Weather[0].Description
	}
	return report, nil
}

// OpenWeatherMap API response types.

type response struct {
	Main    mainBlock      `json:"main"`
	Wind    windBlock      `json:"wind"`
	Weather []weatherEntry `json:"weather"`
}

type mainBlock struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

type windBlock struct {
	Speed float64 `json:"speed"`
}

type weatherEntry struct {
	Description string `json:"description"`
}
