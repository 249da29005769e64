package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the API under router. stats and gatherer may be nil
// to skip the statistics and metrics endpoints.
func RegisterRoutes(
	router fiber.Router,
	demo *DemoHandler,
	keywords *KeywordsHandler,
	stats *StatsHandler,
	gatherer prometheus.Gatherer,
) {
	// Health check
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	if gatherer != nil {
		router.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	d := router.Group("/demo")
	d.Post("/keywords", keywords.HandleDetect)
	if stats != nil {
		d.Get("/stats", stats.HandleStats)
	}

	d.Post("/sessions", demo.HandleCreateSession)
	d.Get("/sessions/:id", demo.HandleGetSession)
	d.Delete("/sessions/:id", demo.HandleDeleteSession)
	d.Post("/sessions/:id/document", demo.HandleSubmitDocument)
	d.Put("/sessions/:id/job-description", demo.HandleUpdateJobDescription)
	d.Post("/sessions/:id/process", demo.HandleStartProcessing)
	d.Post("/sessions/:id/stage", demo.HandleSelectStage)
	d.Post("/sessions/:id/reset", demo.HandleReset)
}
