/**
 * @description
 * Worker status surface.
 * A tiny read-only HTTP app exposing liveness and per-job state: name,
 * running/stopped, configured interval. Polled synchronously, no side effects.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/jobs
 */

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goldpulse/backend/internal/jobs"
)

// NewStatusApp builds the fiber app serving /healthz and /jobs/status
func NewStatusApp(manager *jobs.Manager) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/jobs/status", func(c *fiber.Ctx) error {
		statuses := manager.Status()
		return c.JSON(fiber.Map{
			"jobs":       statuses,
			"total_jobs": len(statuses),
		})
	})

	return app
}
