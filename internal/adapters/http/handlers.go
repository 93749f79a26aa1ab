package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oskargil/crashatlas/internal/core/domain"
	"github.com/oskargil/crashatlas/internal/pkg/metrics"
)

// parseFilterCriteria builds criteria from query parameters. Absent or
// malformed values fall back to the match-everything defaults, so a bad
// filter widens the view instead of erroring.
func parseFilterCriteria(c *fiber.Ctx) domain.FilterCriteria {
	criteria := domain.NewFilterCriteria()
	criteria.YearMin = c.QueryInt("year_min", domain.DefaultYearMin)
	criteria.YearMax = c.QueryInt("year_max", domain.DefaultYearMax)
	if t := c.Query("type"); t != "" {
		criteria.Type = t
	}
	criteria.Region = c.Query("region")
	criteria.MinFatalities = c.QueryInt("min_fatalities", 0)

	// Weather inputs are accepted but inert; see domain.FilterCriteria.
	criteria.Precipitation = c.Query("precipitation")
	criteria.WindMin = c.QueryFloat("wind_min", 0)
	criteria.WindMax = c.QueryFloat("wind_max", 0)
	criteria.Visibility = c.Query("visibility")

	metrics.FilterQueries.Inc()
	return criteria
}

// ListCrashesHandler returns the filtered raw records, paginated.
func ListCrashesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records := deps.Dataset.Filtered(parseFilterCriteria(c))

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		total := len(records)
		if offset >= total {
			records = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			records = records[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: records, Pagination: pg})
	}
}

// MarkersHandler returns the plottable markers for the current filter.
// Records without coordinates are already excluded.
func MarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		markers := deps.Markers.Markers(c.Context(), parseFilterCriteria(c))
		return c.JSON(fiber.Map{
			"markers": markers,
			"count":   len(markers),
		})
	}
}

// NearbyCrashesHandler returns markers within a radius of a point.
func NearbyCrashesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 100000)
		limit := c.QueryInt("limit", 50)

		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 2000000 {
			return errBadRequest(c, "radius must be between 1 and 2000000 meters")
		}

		markers := deps.Markers.Nearby(c.Context(), lat, lon, radius, limit)
		return c.JSON(fiber.Map{
			"markers": markers,
			"count":   len(markers),
		})
	}
}

// AnalyticsHandler returns the summary for the current filter: totals,
// average, and the per-decade histogram in ascending decade order.
func AnalyticsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary := deps.Analytics.Summarize(c.Context(), parseFilterCriteria(c))
		return c.JSON(summary)
	}
}

// ListTypesHandler returns the distinct crash types for the filter select.
func ListTypesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"types": deps.Dataset.Types()})
	}
}

// WeatherHandler fetches current conditions for a marker popup. Provider
// failures are part of normal operation and map to available:false, never
// to a 5xx.
func WeatherHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}

		report, ok := deps.Weather.Current(c.Context(), lat, lon)
		if !ok {
			return c.JSON(fiber.Map{"available": false})
		}
		return c.JSON(fiber.Map{
			"available": true,
			"weather":   report,
		})
	}
}

// ReloadDatasetHandler re-fetches the dataset and swaps the snapshot. The
// previous snapshot keeps serving if the fetch fails.
func ReloadDatasetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := deps.Dataset.Reload(c.Context())
		if err != nil {
			metrics.DatasetLoads.WithLabelValues("failure").Inc()
			return errServiceUnavailable(c, "dataset reload failed: "+err.Error())
		}
		metrics.DatasetLoads.WithLabelValues("success").Inc()
		metrics.DatasetRecords.Set(float64(count))
		return c.JSON(fiber.Map{
			"status":      "reloaded",
			"records":     count,
			"reloaded_at": deps.Dataset.LoadedAt().UTC().Format(time.RFC3339),
		})
	}
}
