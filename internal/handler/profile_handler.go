package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/service"
	"github.com/noah-isme/folio-go-api/internal/utils"
)

// ProfileHandler exposes student profile endpoints.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register wires profile routes onto the student group.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Post("/save-profile", h.save)
	router.Get("/get-student-profile", h.get)
}

func (h *ProfileHandler) save(c *fiber.Ctx) error {
	var payload dto.ProfileRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Save(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to save profile")
			return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to save profile", err.Error())
		}
	}

	return utils.SendSuccess(c, "profile saved", result)
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	result, err := h.service.Get(c.UserContext(), userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load profile")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to load profile", err.Error())
	}

	return utils.SendSuccess(c, "profile retrieved", result)
}
