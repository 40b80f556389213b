package handler

import (
	"strings"

	"devlink/internal/delivery/http/middleware"
	"devlink/internal/pkg/response"
	"devlink/internal/pkg/validation"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// bindAndValidate decodes the JSON body into req and runs its validate tags.
// Every violated rule is reported in data.errors.
func bindAndValidate(c fiber.Ctx, v *validation.Validator, req any) error {
	if err := c.Bind().Body(req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if errs := v.Validate(req); len(errs) > 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, errs[0].Message, response.ValidationData{Errors: errs}, nil)
	}
	return nil
}

func requireUser(c fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, middleware.MessageInvalidToken, nil, nil)
	}
	return id, nil
}

// inputMessage turns "invalid input: from date is required" into
// "From date is required".
func inputMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return response.MessageBadRequest
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
