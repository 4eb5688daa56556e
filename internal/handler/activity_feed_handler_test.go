package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/handler"
	"github.com/noah-isme/folio-go-api/internal/service"
)

func newActivityFeedTestApp(svc service.ActivityService) *fiber.App {
	app := fiber.New()
	group := app.Group("/admin", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(2))
		c.Locals("user_role", "admin")
		return c.Next()
	})
	handler.NewActivityFeedHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestActivityFeedHandler_PassesFilters(t *testing.T) {
	svc := &mockActivityService{feed: dto.ActivityFeedResponse{
		Items: []dto.ActivityResponse{{
			ID:        1,
			ActorID:   3,
			Action:    "project_submit",
			CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		}},
		Pagination: dto.PaginationMeta{Page: 2, PageSize: 10, TotalItems: 21, TotalPages: 3},
	}}
	app := newActivityFeedTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/activity-feed?page=2&limit=10&action=project_submit&actorId=3", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, 2, svc.lastFeed.Page)
	require.Equal(t, 10, svc.lastFeed.PageSize)
	require.Equal(t, "project_submit", svc.lastFeed.Action)
	require.NotNil(t, svc.lastFeed.ActorID)
	require.Equal(t, uint(3), *svc.lastFeed.ActorID)

	var response struct {
		Data dto.ActivityFeedResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data.Items, 1)
	require.Equal(t, int64(21), response.Data.Pagination.TotalItems)
}

func TestActivityFeedHandler_DefaultsWithoutFilters(t *testing.T) {
	svc := &mockActivityService{}
	app := newActivityFeedTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/activity-feed", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Zero(t, svc.lastFeed.Page)
	require.Empty(t, svc.lastFeed.Action)
	require.Nil(t, svc.lastFeed.ActorID)
}

func TestActivityFeedHandler_RejectsBadPage(t *testing.T) {
	svc := &mockActivityService{}
	app := newActivityFeedTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/activity-feed?page=abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
