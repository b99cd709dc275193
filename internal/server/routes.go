package server

import (
	"jobradar/internal/cache"
	"jobradar/internal/core/aggregate"
	"jobradar/internal/core/listings"
	"jobradar/internal/health"
	"jobradar/internal/platform/redis"
	tasks "jobradar/internal/platform/tasks"
	"jobradar/internal/scheduler"

	"github.com/gofiber/fiber/v2"
)

type Dependencies struct {
	Store     *cache.Store
	Aggregate *aggregate.Service
	Scheduler *scheduler.Scheduler
	Tasks     *tasks.Client
	Redis     *redis.Service

	TaskMaxRetries int
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.Handler {
	// Health endpoints
	healthHandler := health.NewHandler(d.Redis)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)

	api := app.Group("/v1")

	listingsHandler := listings.NewHandler(d.Store, d.Aggregate, d.Scheduler, d.Tasks, d.TaskMaxRetries)
	api.Get("/listings", listingsHandler.HandleList)
	api.Post("/refresh", listingsHandler.HandleRefresh)
	api.Post("/invalidate", listingsHandler.HandleInvalidate)
	api.Get("/stats", listingsHandler.HandleStats)

	return healthHandler
}
