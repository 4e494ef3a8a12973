package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck probes one dependency; nil means healthy.
type HealthCheck func(ctx context.Context) error

// CooldownProbe reports whether upstream calls are being short-circuited.
type CooldownProbe interface {
	CooldownActive(ctx context.Context) bool
}

func RegisterRoutes(app *fiber.App, h *ShippingHandler, cooldown CooldownProbe, checks map[string]HealthCheck) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks)+1)
		status := "ok"
		code := fiber.StatusOK

		for name, check := range checks {
			if err := check(healthCtx); err != nil {
				results[name] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		// cooldown is a degraded mode, not an outage
		if cooldown != nil {
			results["rajaongkir"] = "ok"
			if cooldown.CooldownActive(healthCtx) {
				results["rajaongkir"] = "cooldown"
				if status == "ok" {
					status = "degraded"
				}
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": results,
		})
	})

	v1 := app.Group("/api/v1")
	v1.Post("/rates", h.RatesHandler)
	v1.Get("/destinations", h.DestinationsHandler)
}
