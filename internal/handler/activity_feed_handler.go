package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/service"
	"github.com/noah-isme/folio-go-api/internal/utils"
)

// ActivityFeedHandler exposes the admin audit feed.
type ActivityFeedHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityFeedHandler constructs an activity feed handler.
func NewActivityFeedHandler(service service.ActivityService, logger zerolog.Logger) *ActivityFeedHandler {
	return &ActivityFeedHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_feed_handler").Logger(),
	}
}

// Register wires the feed route onto the admin group.
func (h *ActivityFeedHandler) Register(router fiber.Router) {
	router.Get("/activity-feed", h.feed)
}

func (h *ActivityFeedHandler) feed(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	req := dto.ActivityFeedRequest{
		Page:     page,
		PageSize: limit,
		Action:   strings.TrimSpace(c.Query("action")),
	}

	if actorID, err := parseQueryInt(c, "actorId"); err == nil && actorID > 0 {
		id := uint(actorID)
		req.ActorID = &id
	}

	result, err := h.service.Feed(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load activity feed")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to load activity feed", err.Error())
	}

	return utils.SendSuccess(c, "activity feed retrieved", result)
}
