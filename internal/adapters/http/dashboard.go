package http

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed dashboard.html
var dashboardHTML []byte

// DashboardHandler serves the single-page dashboard. All state lives in the
// browser; the page talks to the /v1 API for everything.
func DashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")
		c.Set("Cache-Control", "public, max-age=600")
		return c.Send(dashboardHTML)
	}
}
