package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/service"
	"github.com/noah-isme/folio-go-api/internal/utils"
)

// ProjectHandler exposes the student-facing project endpoints.
type ProjectHandler struct {
	service service.ProjectService
	logger  zerolog.Logger
}

// NewProjectHandler constructs a project handler.
func NewProjectHandler(service service.ProjectService, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		logger:  logger.With().Str("component", "project_handler").Logger(),
	}
}

// Register wires project routes onto the student group.
func (h *ProjectHandler) Register(router fiber.Router) {
	router.Post("/create-projects", h.create)
	router.Patch("/update-project/:id", h.update)
	router.Get("/get-student-projects", h.listOwn)
	router.Get("/get-projects/:id", h.get)
}

func (h *ProjectHandler) create(c *fiber.Ctx) error {
	var payload dto.ProjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	images, err := imagesFromForm(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "multipart form with images is required")
	}

	result, err := h.service.Create(c.UserContext(), actorFromContext(c), payload, images)
	if err != nil {
		return h.sendProjectError(c, err, "failed to create project")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "project submitted for review", result)
}

func (h *ProjectHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	var payload dto.ProjectUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	// Images are optional on update; a bare form is fine.
	images, _ := imagesFromForm(c)

	result, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload, images)
	if err != nil {
		return h.sendProjectError(c, err, "failed to update project")
	}

	return utils.SendSuccess(c, "project updated", result)
}

func (h *ProjectHandler) listOwn(c *fiber.Ctx) error {
	result, err := h.service.ListByOwner(c.UserContext(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list projects")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to list projects", err.Error())
	}

	return utils.SendSuccess(c, "projects retrieved", result)
}

func (h *ProjectHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	result, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return h.sendProjectError(c, err, "failed to load project")
	}

	return utils.SendSuccess(c, "project retrieved", result)
}

func (h *ProjectHandler) sendProjectError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCategory), errors.Is(err, service.ErrNoImages), errors.Is(err, service.ErrTooManyImages):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrImageTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrUnsupportedImageType):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrProjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotProjectOwner):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, fallback, err.Error())
	}
}

func imagesFromForm(c *fiber.Ctx) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	if files, ok := form.File["images"]; ok {
		return files, nil
	}
	return nil, nil
}
