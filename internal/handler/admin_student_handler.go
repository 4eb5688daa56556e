package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/service"
	"github.com/noah-isme/folio-go-api/internal/utils"
)

// AdminStudentHandler exposes the student moderation endpoints.
type AdminStudentHandler struct {
	service service.AdminStudentService
	logger  zerolog.Logger
}

// NewAdminStudentHandler constructs an admin student handler.
func NewAdminStudentHandler(service service.AdminStudentService, logger zerolog.Logger) *AdminStudentHandler {
	return &AdminStudentHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_student_handler").Logger(),
	}
}

// Register wires the student moderation routes onto the admin group.
func (h *AdminStudentHandler) Register(router fiber.Router) {
	router.Patch("/approve-student/:studentId", h.approve)
	router.Get("/pending-students", h.listPending)
	router.Delete("/delete-student/:id", h.delete)
}

func (h *AdminStudentHandler) approve(c *fiber.Ctx) error {
	id, err := parseParamID(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	result, err := h.service.Approve(c.UserContext(), id, actorFromContext(c))
	if err != nil {
		return h.sendStudentError(c, err, "failed to approve student")
	}

	return utils.SendSuccess(c, "student approved", result)
}

func (h *AdminStudentHandler) listPending(c *fiber.Ctx) error {
	result, err := h.service.ListPending(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list pending students")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to list pending students", err.Error())
	}

	return utils.SendSuccess(c, "pending students retrieved", result)
}

func (h *AdminStudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	if err := h.service.Delete(c.UserContext(), id, actorFromContext(c)); err != nil {
		return h.sendStudentError(c, err, "failed to delete student")
	}

	return utils.SendSuccess(c, "student deleted", nil)
}

func (h *AdminStudentHandler) sendStudentError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAStudent):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, fallback, err.Error())
	}
}
