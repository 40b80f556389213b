package handler

import (
	"context"
	"errors"

	"devlink/internal/delivery/http/dto"
	"devlink/internal/delivery/http/middleware"
	"devlink/internal/domain/user"
	"devlink/internal/pkg/response"
	useruc "devlink/internal/usecase/user"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type UserUsecase interface {
	GetCurrent(ctx context.Context, userID uuid.UUID) (user.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type UserHandler struct {
	uc   UserUsecase
	auth *middleware.AuthMiddleware
}

func NewUserHandler(uc UserUsecase, auth *middleware.AuthMiddleware) *UserHandler {
	return &UserHandler{uc: uc, auth: auth}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/auth/me", h.auth.Require(h.GetMe))
	r.Delete("/profile", h.auth.Require(h.DeleteAccount))
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	u, err := h.uc.GetCurrent(c.Context(), userID)
	if err != nil {
		if errors.Is(err, useruc.ErrNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
		}
		return middleware.Internal(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(u))
}

// DeleteAccount removes the caller together with their profile.
func (h *UserHandler) DeleteAccount(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.uc.DeleteAccount(c.Context(), userID); err != nil {
		if errors.Is(err, useruc.ErrNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
		}
		return middleware.Internal(err)
	}

	return response.Success(c, fiber.StatusOK, "User deleted", fiber.Map{"msg": "User deleted"})
}
