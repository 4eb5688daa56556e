package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/service"
	"github.com/noah-isme/folio-go-api/internal/utils"
)

// GalleryHandler exposes the unauthenticated public gallery endpoints.
type GalleryHandler struct {
	service service.ProjectService
	logger  zerolog.Logger
}

// NewGalleryHandler constructs a gallery handler.
func NewGalleryHandler(service service.ProjectService, logger zerolog.Logger) *GalleryHandler {
	return &GalleryHandler{
		service: service,
		logger:  logger.With().Str("component", "gallery_handler").Logger(),
	}
}

// Register wires the gallery routes onto the public group. The categories
// route is registered before the id route so it is not captured as an id.
func (h *GalleryHandler) Register(router fiber.Router) {
	router.Get("/projects", h.list)
	router.Get("/projects/categories", h.categories)
	router.Get("/projects/:id", h.detail)
}

func (h *GalleryHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	req := dto.GalleryRequest{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: limit,
	}

	result, err := h.service.Gallery(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list gallery")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to list gallery", err.Error())
	}

	return utils.SendSuccess(c, "gallery retrieved", result)
}

func (h *GalleryHandler) categories(c *fiber.Ctx) error {
	result, err := h.service.Categories(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list categories")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to list categories", err.Error())
	}

	return utils.SendSuccess(c, "categories retrieved", result)
}

func (h *GalleryHandler) detail(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	result, err := h.service.GalleryDetail(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load gallery project")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to load gallery project", err.Error())
	}

	return utils.SendSuccess(c, "project retrieved", result)
}
