package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/service"
	"github.com/noah-isme/folio-go-api/internal/utils"
)

// AuthHandler exposes signup, login and current-user endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic wires the unauthenticated auth routes.
func (h *AuthHandler) RegisterPublic(router fiber.Router) {
	router.Post("/student/signup", h.studentSignup)
	router.Post("/admin/signup", h.adminSignup)
	router.Post("/login", h.login)
}

// RegisterProtected wires the token-authenticated auth routes.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Get("/me", h.me)
}

func (h *AuthHandler) studentSignup(c *fiber.Ctx) error {
	var payload dto.StudentSignupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.StudentSignup(c.UserContext(), payload)
	if err != nil {
		return h.sendAuthError(c, err, "student signup failed")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student account created, awaiting approval", result)
}

func (h *AuthHandler) adminSignup(c *fiber.Ctx) error {
	var payload dto.AdminSignupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.AdminSignup(c.UserContext(), payload)
	if err != nil {
		return h.sendAuthError(c, err, "admin signup failed")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "admin account created", result)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return h.sendAuthError(c, err, "login failed")
	}

	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	user, err := h.service.CurrentUser(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load current user")
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, "failed to load current user", err.Error())
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *AuthHandler) sendAuthError(c *fiber.Ctx, err error, fallback string) error {
	var roleMismatch *service.RoleMismatchError
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateAccount):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &roleMismatch):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPendingApproval):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendErrorDetail(c, fiber.StatusInternalServerError, fallback, err.Error())
	}
}
