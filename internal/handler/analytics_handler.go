package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/service"
	"github.com/noah-isme/folio-go-api/internal/utils"
)

// AnalyticsHandler exposes the admin reporting endpoints.
type AnalyticsHandler struct {
	service  service.AnalyticsService
	activity service.ActivityService
	logger   zerolog.Logger
}

// NewAnalyticsHandler constructs an analytics handler.
func NewAnalyticsHandler(service service.AnalyticsService, activity service.ActivityService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:  service,
		activity: activity,
		logger:   logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register wires the reporting routes onto the admin group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/statistics/students", h.studentStatistics)
	router.Get("/statistics/analytics", h.projectStatistics)
	router.Get("/analytics", h.dashboard)
}

func (h *AnalyticsHandler) studentStatistics(c *fiber.Ctx) error {
	result, err := h.service.StudentStatistics(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute student statistics")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to compute student statistics", err.Error())
	}

	h.activity.RecordAnalyticsView(c.UserContext(), actorFromContext(c), "students")

	return utils.SendSuccess(c, "student statistics retrieved", result)
}

func (h *AnalyticsHandler) projectStatistics(c *fiber.Ctx) error {
	result, err := h.service.ProjectStatistics(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute project statistics")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to compute project statistics", err.Error())
	}

	h.activity.RecordAnalyticsView(c.UserContext(), actorFromContext(c), "projects")

	return utils.SendSuccess(c, "project statistics retrieved", result)
}

func (h *AnalyticsHandler) dashboard(c *fiber.Ctx) error {
	result, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build analytics dashboard")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to build analytics dashboard", err.Error())
	}

	h.activity.RecordAnalyticsView(c.UserContext(), actorFromContext(c), "")

	return utils.SendSuccess(c, "analytics dashboard retrieved", result)
}
