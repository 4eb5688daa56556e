package handler_test

import (
	"context"
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

type mockProfileService struct {
	profile   dto.ProfileResponse
	err       error
	lastActor service.Actor
	lastSave  dto.ProfileRequest
	lastGetID uint
}

func (m *mockProfileService) Save(_ context.Context, actor service.Actor, payload dto.ProfileRequest) (dto.ProfileResponse, error) {
	m.lastActor = actor
	m.lastSave = payload
	if m.err != nil {
		return dto.ProfileResponse{}, m.err
	}
	return m.profile, nil
}

func (m *mockProfileService) Get(_ context.Context, userID uint) (dto.ProfileResponse, error) {
	m.lastGetID = userID
	if m.err != nil {
		return dto.ProfileResponse{}, m.err
	}
	return m.profile, nil
}

func newProfileTestApp(svc service.ProfileService) *fiber.App {
	app := fiber.New()
	group := app.Group("/student", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(3))
		c.Locals("user_role", "student")
		return c.Next()
	})
	handler.NewProfileHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestProfileHandler_Save(t *testing.T) {
	updated := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := &mockProfileService{profile: dto.ProfileResponse{
		Profile:   map[string]interface{}{"bio": "final year couture"},
		UpdatedAt: &updated,
	}}
	app := newProfileTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/student/save-profile", jsonBody(t, dto.ProfileRequest{
		Bio:    "final year couture",
		Skills: []string{"draping"},
	}))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Message string              `json:"message"`
		Data    dto.ProfileResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "profile saved", response.Message)
	require.Equal(t, "final year couture", response.Data.Profile["bio"])

	require.Equal(t, uint(3), svc.lastActor.ID)
	require.Equal(t, []string{"draping"}, svc.lastSave.Skills)
}

func TestProfileHandler_SaveUnknownAccount(t *testing.T) {
	svc := &mockProfileService{err: service.ErrUserNotFound}
	app := newProfileTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/student/save-profile", jsonBody(t, dto.ProfileRequest{Bio: "hi"}))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProfileHandler_Get(t *testing.T) {
	svc := &mockProfileService{profile: dto.ProfileResponse{Profile: map[string]interface{}{}}}
	app := newProfileTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/student/get-student-profile", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(3), svc.lastGetID)
}
