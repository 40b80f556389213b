package handler

import (
	"context"
	"errors"
	"time"

	"devlink/internal/delivery/http/dto"
	"devlink/internal/delivery/http/middleware"
	"devlink/internal/pkg/response"
	"devlink/internal/pkg/validation"
	profileuc "devlink/internal/usecase/profile"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	messageNoProfile       = "There is no profile for this user"
	messageProfileNotFound = "Profile not found"
)

type ProfileUsecase interface {
	GetOwn(ctx context.Context, userID uuid.UUID) (profileuc.View, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (profileuc.View, error)
	List(ctx context.Context) ([]profileuc.View, error)
	Upsert(ctx context.Context, userID uuid.UUID, in profileuc.UpsertInput) (profileuc.View, error)
	AddExperience(ctx context.Context, userID uuid.UUID, in profileuc.ExperienceInput) (profileuc.View, error)
	AddEducation(ctx context.Context, userID uuid.UUID, in profileuc.EducationInput) (profileuc.View, error)
	RemoveExperience(ctx context.Context, userID, entryID uuid.UUID) (profileuc.View, error)
	RemoveEducation(ctx context.Context, userID, entryID uuid.UUID) (profileuc.View, error)
}

type ProfileHandler struct {
	uc       ProfileUsecase
	auth     *middleware.AuthMiddleware
	validate *validation.Validator
}

// upsertProfileRequest leaves every field optional; the usecase enforces
// status and skills when the profile does not exist yet.
type upsertProfileRequest struct {
	Company        *string `json:"company"`
	Website        *string `json:"website"`
	Location       *string `json:"location"`
	Status         *string `json:"status"`
	Skills         *string `json:"skills"`
	Bio            *string `json:"bio"`
	GithubUsername *string `json:"githubusername"`
	Twitter        *string `json:"twitter"`
	Facebook       *string `json:"facebook"`
	Instagram      *string `json:"instagram"`
	LinkedIn       *string `json:"linkedin"`
}

type experienceRequest struct {
	Title       string `json:"title" validate:"notblank" msg:"Title is required"`
	Company     string `json:"company" validate:"notblank" msg:"Company is required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"notblank,date" msg:"From date is required"`
	To          string `json:"to" validate:"date" msg:"To date must be a valid date"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type educationRequest struct {
	School       string `json:"school" validate:"notblank" msg:"School is required"`
	Degree       string `json:"degree" validate:"notblank" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"notblank" msg:"Field of study is required"`
	From         string `json:"from" validate:"notblank,date" msg:"From date is required"`
	To           string `json:"to" validate:"date" msg:"To date must be a valid date"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func NewProfileHandler(uc ProfileUsecase, auth *middleware.AuthMiddleware, v *validation.Validator) *ProfileHandler {
	return &ProfileHandler{uc: uc, auth: auth, validate: v}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/me", h.auth.Require(h.GetOwn))
	r.Get("/user/:user_id", h.GetByUser)
	r.Post("/", h.auth.Require(h.Upsert))
	r.Put("/experience", h.auth.Require(h.AddExperience))
	r.Delete("/experience/:exp_id", h.auth.Require(h.RemoveExperience))
	r.Put("/education", h.auth.Require(h.AddEducation))
	r.Delete("/education/:edu_id", h.auth.Require(h.RemoveEducation))
}

func (h *ProfileHandler) List(c fiber.Ctx) error {
	views, err := h.uc.List(c.Context())
	if err != nil {
		return middleware.Internal(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileListResponse(views))
}

func (h *ProfileHandler) GetOwn(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	v, err := h.uc.GetOwn(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err, messageNoProfile)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (h *ProfileHandler) GetByUser(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, messageProfileNotFound, nil, err)
	}

	v, err := h.uc.GetByUser(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err, messageProfileNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (h *ProfileHandler) Upsert(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req upsertProfileRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	v, err := h.uc.Upsert(c.Context(), userID, profileuc.UpsertInput{
		Company:        req.Company,
		Website:        req.Website,
		Status:         req.Status,
		Location:       req.Location,
		Bio:            req.Bio,
		GithubUsername: req.GithubUsername,
		Skills:         req.Skills,
		Twitter:        req.Twitter,
		Facebook:       req.Facebook,
		Instagram:      req.Instagram,
		LinkedIn:       req.LinkedIn,
	})
	if err != nil {
		return mapProfileUsecaseError(err, messageNoProfile)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (h *ProfileHandler) AddExperience(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req experienceRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}
	from, to := parsePeriod(req.From, req.To)

	v, err := h.uc.AddExperience(c.Context(), userID, profileuc.ExperienceInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		return mapProfileUsecaseError(err, messageNoProfile)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (h *ProfileHandler) AddEducation(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req educationRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}
	from, to := parsePeriod(req.From, req.To)

	v, err := h.uc.AddEducation(c.Context(), userID, profileuc.EducationInput{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		return mapProfileUsecaseError(err, messageNoProfile)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

func (h *ProfileHandler) RemoveExperience(c fiber.Ctx) error {
	return h.remove(c, "exp_id", h.uc.RemoveExperience)
}

func (h *ProfileHandler) RemoveEducation(c fiber.Ctx) error {
	return h.remove(c, "edu_id", h.uc.RemoveEducation)
}

type removeFunc func(ctx context.Context, userID, entryID uuid.UUID) (profileuc.View, error)

// remove treats a malformed entry id like an unknown one: nothing matches, the
// profile is returned unchanged.
func (h *ProfileHandler) remove(c fiber.Ctx, param string, fn removeFunc) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	entryID, err := uuid.Parse(c.Params(param))
	if err != nil {
		entryID = uuid.Nil
	}

	v, err := fn(c.Context(), userID, entryID)
	if err != nil {
		return mapProfileUsecaseError(err, messageNoProfile)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(v))
}

// parsePeriod runs after validation, so both dates are well formed or empty.
func parsePeriod(fromRaw, toRaw string) (time.Time, *time.Time) {
	from, _ := validation.ParseDate(fromRaw)
	to, err := validation.ParseDate(toRaw)
	if err != nil {
		return from, nil
	}
	return from, &to
}

func mapProfileUsecaseError(err error, notFoundMsg string) error {
	var fieldErrs profileuc.FieldErrors
	switch {
	case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
		return middleware.NewAppError(fiber.StatusBadRequest, fieldErrs[0].Message, response.ValidationData{Errors: []validation.FieldError(fieldErrs)}, err)
	case errors.Is(err, profileuc.ErrNotFound):
		return middleware.NewAppError(fiber.StatusBadRequest, notFoundMsg, nil, err)
	case errors.Is(err, profileuc.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, inputMessage(err, profileuc.ErrInvalidInput), nil, err)
	case errors.Is(err, profileuc.ErrUserNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
	case errors.Is(err, profileuc.ErrDuplicateProfile):
		return middleware.NewAppError(fiber.StatusBadRequest, "Profile already exists", nil, err)
	default:
		return middleware.Internal(err)
	}
}
