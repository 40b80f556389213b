package handler

import (
	"errors"
	"strings"

	"devlink/internal/delivery/http/dto"
	"devlink/internal/delivery/http/middleware"
	"devlink/internal/metrics"
	"devlink/internal/pkg/response"
	"devlink/internal/pkg/validation"
	ucauth "devlink/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

const messageInvalidCredentials = "Invalid Credentials"

type AuthHandler struct {
	uc       ucauth.Usecase
	validate *validation.Validator
	metrics  metrics.AuthRecorder
}

type registerRequest struct {
	Name     string `json:"name" validate:"notblank" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"min=5" msg:"Please enter a password with 5 or more characters"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

func NewAuthHandler(uc ucauth.Usecase, v *validation.Validator, rec metrics.AuthRecorder) *AuthHandler {
	return &AuthHandler{uc: uc, validate: v, metrics: rec}
}

// RegisterRoutes mounts POST /users and POST /auth on the api router.
func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/users", h.Register)
	r.Post("/auth", h.Login)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	req.Email = strings.TrimSpace(req.Email)
	if errs := h.validate.Validate(req); len(errs) > 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, errs[0].Message, response.ValidationData{Errors: errs}, nil)
	}

	tok, err := h.uc.Register(c.Context(), ucauth.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	if h.metrics != nil {
		h.metrics.RecordRegistration()
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.TokenResponse{Token: tok})
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	req.Email = strings.TrimSpace(req.Email)
	if errs := h.validate.Validate(req); len(errs) > 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, errs[0].Message, response.ValidationData{Errors: errs}, nil)
	}

	tok, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if h.metrics != nil && (err == nil || errors.Is(err, ucauth.ErrInvalidCredentials)) {
		h.metrics.RecordLogin(err == nil)
	}
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.TokenResponse{Token: tok})
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucauth.ErrDuplicateUser):
		return middleware.NewAppError(fiber.StatusBadRequest, "User already exists", nil, err)
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusBadRequest, messageInvalidCredentials, nil, err)
	case errors.Is(err, ucauth.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	default:
		return middleware.Internal(err)
	}
}
