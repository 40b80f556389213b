package handler

import (
	"context"
	"time"

	"devlink/internal/domain"
	"devlink/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheProbe is an optional dependency; a disabled cache does not make the
// service unhealthy.
type CacheProbe interface {
	Pinger
	Enabled() bool
}

type HealthHandler struct {
	db    Pinger
	cache CacheProbe
	now   func() time.Time
}

func NewHealthHandler(db Pinger, cache CacheProbe) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, now: time.Now}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Check)
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
	defer cancel()

	st := domain.HealthStatus{ServerTime: h.now().UTC()}
	st.DatabaseHealthy = h.db != nil && h.db.Ping(ctx) == nil
	if h.cache != nil && h.cache.Enabled() {
		st.CacheEnabled = true
		st.CacheHealthy = h.cache.Ping(ctx) == nil
	}

	if !st.Healthy() {
		return response.Error(c, fiber.StatusInternalServerError, "unhealthy", st)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, st)
}
