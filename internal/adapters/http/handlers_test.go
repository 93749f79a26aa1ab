package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/oskargil/crashatlas/internal/adapters/http"
	"github.com/oskargil/crashatlas/internal/core/domain"
	"github.com/oskargil/crashatlas/internal/core/usecases"
)

// ---- Mocks ----

type mockSource struct {
	fetchFn func(ctx context.Context) ([]domain.CrashRecord, error)
}

func (m *mockSource) FetchRecords(ctx context.Context) ([]domain.CrashRecord, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}
	return nil, nil
}

type mockWeatherProvider struct {
	currentFn func(ctx context.Context, lat, lon float64) (domain.WeatherReport, error)
}

func (m *mockWeatherProvider) Current(ctx context.Context, lat, lon float64) (domain.WeatherReport, error) {
	if m.currentFn != nil {
		return m.currentFn(ctx, lat, lon)
	}
	return domain.WeatherReport{}, nil
}

// ---- Test helpers ----

func testRecords() []domain.CrashRecord {
	return []domain.CrashRecord{
		{Location: "Tenerife", Year: 1977, Type: "Commercial", Fatalities: 583, Country: "Spain", Latitude: 28.48, Longitude: -16.34},
		{Location: "Gimli", Year: 1983, Type: "Commercial", Fatalities: 0, Country: "Canada", Latitude: 50.63, Longitude: -97.04},
		{Location: "Test Range", Year: 2003, Type: "Military", Fatalities: 7, Country: "United States"},
	}
}

func makeDeps(t *testing.T, opts ...func(*handler.Dependencies)) *handler.Dependencies {
	t.Helper()

	dataset := usecases.NewDatasetService(&mockSource{
		fetchFn: func(ctx context.Context) ([]domain.CrashRecord, error) {
			return testRecords(), nil
		},
	}, nil)
	if err := dataset.Load(context.Background()); err != nil {
		t.Fatalf("load dataset: %v", err)
	}

	d := &handler.Dependencies{
		Dataset:   dataset,
		Markers:   usecases.NewMarkerService(dataset, nil),
		Analytics: usecases.NewAnalyticsService(dataset, nil),
		Weather:   usecases.NewWeatherService(&mockWeatherProvider{}),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Crash list ----

func TestListCrashes_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/crashes", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.CrashRecord `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 3 {
		t.Errorf("expected 3 records, got %d", len(result.Data))
	}
}

func TestListCrashes_Filtered(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/crashes?region=spain&min_fatalities=100", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data []domain.CrashRecord `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 1 || result.Data[0].Location != "Tenerife" {
		t.Errorf("unexpected filtered result: %+v", result.Data)
	}
}

func TestListCrashes_MalformedParamsFallBackToDefaults(t *testing.T) {
	app := setupApp(makeDeps(t))

	// Non-numeric year bounds must widen the view, not error.
	req := httptest.NewRequest("GET", "/v1/crashes?year_min=abc&year_max=xyz", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 3 {
		t.Errorf("malformed params must match everything, got total %d", result.Pagination.Total)
	}
}

// ---- Markers ----

func TestMarkers_ExcludesRecordsWithoutCoordinates(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/crashes/markers", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Markers []domain.Marker `json:"markers"`
		Count   int             `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 2 {
		t.Fatalf("expected 2 plottable markers, got %d", result.Count)
	}
	for _, m := range result.Markers {
		if m.Location == "Test Range" {
			t.Error("record without coordinates must not produce a marker")
		}
	}
}

func TestMarkers_SeverityStyling(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/crashes/markers?region=spain", nil)
	resp, _ := app.Test(req, -1)

	var result struct {
		Markers []domain.Marker `json:"markers"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(result.Markers))
	}
	m := result.Markers[0]
	if m.Color != "red" {
		t.Errorf("583 fatalities must be red, got %q", m.Color)
	}
	if m.Size != 15 {
		t.Errorf("583 fatalities must clamp to size 15, got %g", m.Size)
	}
	if m.PopupKey != "1977-Tenerife" {
		t.Errorf("unexpected popup key %q", m.PopupKey)
	}
}

func TestNearbyCrashes_RequiresCoordinates(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/crashes/nearby", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNearbyCrashes_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/crashes/nearby?lat=28.5&lon=-16.3&radius=50000", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Markers []domain.Marker `json:"markers"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Markers) != 1 || result.Markers[0].Location != "Tenerife" {
		t.Errorf("unexpected nearby result: %+v", result.Markers)
	}
}

// ---- Analytics ----

func TestAnalytics_Summary(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/analytics", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var summary domain.Summary
	json.NewDecoder(resp.Body).Decode(&summary)
	if summary.Count != 3 || summary.TotalFatalities != 590 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.AverageFatalities != 196.7 {
		t.Errorf("expected average 196.7, got %g", summary.AverageFatalities)
	}
	if len(summary.Decades) != 3 {
		t.Fatalf("expected 3 decades, got %d", len(summary.Decades))
	}
	// 1970s, 1980s, 2000s in ascending numeric order
	if summary.Decades[0].Decade != 1970 || summary.Decades[2].Decade != 2000 {
		t.Errorf("decades out of order: %+v", summary.Decades)
	}
}

// ---- Types ----

func TestListTypes(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/types", nil)
	resp, _ := app.Test(req, -1)

	var result struct {
		Types []string `json:"types"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Types) != 3 || result.Types[0] != "All" {
		t.Errorf("unexpected types: %v", result.Types)
	}
}

// ---- Weather ----

func TestWeather_Success(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Weather = usecases.NewWeatherService(&mockWeatherProvider{
			currentFn: func(ctx context.Context, lat, lon float64) (domain.WeatherReport, error) {
				return domain.WeatherReport{TemperatureC: 21.3, Description: "scattered clouds"}, nil
			},
		})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/weather?lat=28.48&lon=-16.34", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := readBody(t, resp.Body)
	if !strings.Contains(string(body), `"available":true`) {
		t.Errorf("expected available weather, got %s", body)
	}
	if !strings.Contains(string(body), "scattered clouds") {
		t.Errorf("expected description in body, got %s", body)
	}
}

func TestWeather_ProviderFailureIsNot5xx(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Weather = usecases.NewWeatherService(&mockWeatherProvider{
			currentFn: func(ctx context.Context, lat, lon float64) (domain.WeatherReport, error) {
				return domain.WeatherReport{}, errors.New("status 500")
			},
		})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/weather?lat=1&lon=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("provider failure must stay 200, got %d", resp.StatusCode)
	}

	body := readBody(t, resp.Body)
	if !strings.Contains(string(body), `"available":false`) {
		t.Errorf("expected available:false, got %s", body)
	}
}

func TestWeather_MissingCoordinates(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/weather", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Reload ----

func TestReloadDataset(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/dataset/reload", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := readBody(t, resp.Body)
	if !strings.Contains(string(body), `"records":3`) {
		t.Errorf("unexpected reload response: %s", body)
	}
}

func TestReloadDataset_FetchFailureKeepsServing(t *testing.T) {
	calls := 0
	dataset := usecases.NewDatasetService(&mockSource{
		fetchFn: func(ctx context.Context) ([]domain.CrashRecord, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("upstream down")
			}
			return testRecords(), nil
		},
	}, nil)
	if err := dataset.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Dataset = dataset
		d.Markers = usecases.NewMarkerService(dataset, nil)
		d.Analytics = usecases.NewAnalyticsService(dataset, nil)
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("POST", "/v1/dataset/reload", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 on reload failure, got %d", resp.StatusCode)
	}

	// Old snapshot keeps serving.
	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/crashes", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 after failed reload, got %d", resp.StatusCode)
	}
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady_DatasetLoaded(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady_DatasetNotLoaded(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		dataset := usecases.NewDatasetService(&mockSource{}, nil)
		d.Dataset = dataset
		d.Markers = usecases.NewMarkerService(dataset, nil)
		d.Analytics = usecases.NewAnalyticsService(dataset, nil)
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 without a dataset, got %d", resp.StatusCode)
	}
}

// ---- Dashboard page ----

func TestDashboardPage(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %q", ct)
	}
	body := readBody(t, resp.Body)
	if !strings.Contains(string(body), "CrashAtlas") {
		t.Error("dashboard page missing title")
	}
}

// ---- GraphQL ----

func TestGraphQL_Analytics(t *testing.T) {
	app := setupApp(makeDeps(t))

	query := `{"query": "{ analytics { count total_fatalities decades { decade count } } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(query))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Analytics struct {
				Count           int `json:"count"`
				TotalFatalities int `json:"total_fatalities"`
			} `json:"analytics"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if result.Data.Analytics.Count != 3 || result.Data.Analytics.TotalFatalities != 590 {
		t.Errorf("unexpected analytics: %+v", result.Data.Analytics)
	}
}

func TestGraphQL_CrashTypes(t *testing.T) {
	app := setupApp(makeDeps(t))

	query := `{"query": "{ crashTypes }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(query))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)

	var result struct {
		Data struct {
			CrashTypes []string `json:"crashTypes"`
		} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data.CrashTypes) != 3 || result.Data.CrashTypes[0] != "All" {
		t.Errorf("unexpected crashTypes: %v", result.Data.CrashTypes)
	}
}
