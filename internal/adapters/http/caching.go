package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		// Default cache times by endpoint pattern
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case path == "/v1/weather":
			ttl = "no-store" // Live conditions, fetched fresh per popup

		case path == "/v1/types":
			ttl = "public, max-age=3600" // Type list only changes on reload

		case strings.HasPrefix(path, "/v1/crashes"):
			ttl = "public, max-age=300" // 5 min for dataset-derived views

		case path == "/v1/analytics":
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300" // 5 min default for API endpoints
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
