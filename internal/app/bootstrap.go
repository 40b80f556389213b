package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"devlink/internal/config"
	"devlink/internal/delivery/http/handler"
	"devlink/internal/delivery/http/middleware"
	"devlink/internal/delivery/http/routes"

	"github.com/gofiber/fiber/v3"
)

const startupTimeout = 30 * time.Second

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New wires the HTTP surface on top of an already built container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c)

	authMw := middleware.NewAuthMiddleware(c.Tokens, c.Metrics, c.Logger)
	reg := &routes.Registry{
		Health:  handler.NewHealthHandler(c.store.pinger, c.Cache),
		Auth:    handler.NewAuthHandler(c.Auth, c.Validator, c.Metrics),
		User:    handler.NewUserHandler(c.Users, authMw),
		Profile: handler.NewProfileHandler(c.Profile, authMw, c.Validator),
		Metrics: c.Metrics,
	}
	reg.Register(f)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(cfg config.Config, logger *log.Logger) (*App, func() error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

// registerGlobalMiddleware mounts access log, metrics and error rendering in
// that order, so the outer two observe the rendered status.
func registerGlobalMiddleware(app *fiber.App, c *Container) {
	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
	app.Use(c.Metrics.Middleware())
	app.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
