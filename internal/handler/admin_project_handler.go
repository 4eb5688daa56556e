package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/service"
	"github.com/noah-isme/folio-go-api/internal/utils"
)

// AdminProjectHandler exposes the project moderation endpoints.
type AdminProjectHandler struct {
	service service.ProjectService
	logger  zerolog.Logger
}

// NewAdminProjectHandler constructs an admin project handler.
func NewAdminProjectHandler(service service.ProjectService, logger zerolog.Logger) *AdminProjectHandler {
	return &AdminProjectHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_project_handler").Logger(),
	}
}

// Register wires the project moderation routes onto the admin group.
func (h *AdminProjectHandler) Register(router fiber.Router) {
	router.Patch("/approve-project", h.approve)
	router.Patch("/reject-project", h.reject)
	router.Delete("/delete-project/:id", h.delete)
}

func (h *AdminProjectHandler) approve(c *fiber.Ctx) error {
	var payload dto.ProjectModerationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.ProjectID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "projectId is required")
	}

	result, err := h.service.Approve(c.UserContext(), payload.ProjectID, actorFromContext(c))
	if err != nil {
		return h.sendModerationError(c, err, "failed to approve project")
	}

	return utils.SendSuccess(c, "project approved", result)
}

func (h *AdminProjectHandler) reject(c *fiber.Ctx) error {
	var payload dto.ProjectModerationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.ProjectID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "projectId is required")
	}

	result, err := h.service.Reject(c.UserContext(), payload.ProjectID, payload.Reason, actorFromContext(c))
	if err != nil {
		return h.sendModerationError(c, err, "failed to reject project")
	}

	return utils.SendSuccess(c, "project rejected", result)
}

func (h *AdminProjectHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.service.Delete(c.UserContext(), id, actorFromContext(c)); err != nil {
		return h.sendModerationError(c, err, "failed to delete project")
	}

	return utils.SendSuccess(c, "project deleted", nil)
}

func (h *AdminProjectHandler) sendModerationError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrReasonRequired), errors.Is(err, service.ErrAlreadyReviewed):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, fallback, err.Error())
	}
}
