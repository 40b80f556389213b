package routes

import (
	"devlink/internal/delivery/http/handler"
	"devlink/internal/metrics"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Profile *handler.ProfileHandler
	Metrics *metrics.Collector
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerOps(app)
	r.registerAPI(app)
}

func (r *Registry) registerOps(app *fiber.App) {
	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
	if r.Metrics != nil {
		app.Get("/metrics", r.Metrics.Handler())
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")

	r.Auth.RegisterRoutes(api)
	r.User.RegisterRoutes(api)
	r.Profile.RegisterRoutes(api.Group("/profile"))
}
