package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/service"
)

// AuditConfig configures the request audit interceptor. Skip paths are
// explicit configuration rather than a package-level list so the dashboard's
// own polling endpoints can be excluded without touching this file.
type AuditConfig struct {
	SkipPaths []string
	// MaxCaptureBytes bounds how much of each body is cloned for the audit
	// event. Multipart uploads can reach the server body limit; cloning them
	// whole would double peak memory for bytes the log truncates anyway. The
	// default comfortably fits every JSON payload this API accepts, so
	// redaction still sees complete documents.
	MaxCaptureBytes int
}

const defaultMaxCaptureBytes = 64 * 1024

// Audit observes authenticated requests after the handler has produced its
// response and hands them to the activity service for classification and
// persistence. It never alters the response, and every failure inside the
// audit path is swallowed: a lost log entry is simply lost.
func Audit(activity service.ActivityService, cfg AuditConfig, logger zerolog.Logger) fiber.Handler {
	auditLogger := logger.With().Str("component", "audit_middleware").Logger()

	captureLimit := cfg.MaxCaptureBytes
	if captureLimit <= 0 {
		captureLimit = defaultMaxCaptureBytes
	}

	return func(c *fiber.Ctx) error {
		err := c.Next()

		func() {
			defer func() {
				if r := recover(); r != nil {
					auditLogger.Warn().Interface("panic", r).Msg("audit capture panicked")
				}
			}()

			path := c.Path()
			if shouldSkipAudit(path, cfg.SkipPaths) {
				return
			}

			userID := userIDFromLocals(c)
			if userID == 0 {
				return
			}

			event := service.RequestEvent{
				Actor: service.Actor{
					ID:   userID,
					Role: roleFromLocals(c),
				},
				Method:       c.Method(),
				Path:         path,
				Route:        routeTemplate(c),
				StatusCode:   c.Response().StatusCode(),
				RequestBody:  cloneCapped(c.Body(), captureLimit),
				ResponseBody: cloneCapped(c.Response().Body(), captureLimit),
				ResourceID:   resourceIDFromParams(c),
				IPAddress:    c.IP(),
				UserAgent:    c.Get("User-Agent"),
			}

			activity.Observe(c.UserContext(), event)
		}()

		return err
	}
}

func cloneCapped(body []byte, limit int) []byte {
	if len(body) == 0 {
		return nil
	}
	if len(body) > limit {
		body = body[:limit]
	}
	return append([]byte(nil), body...)
}

func shouldSkipAudit(path string, skipPaths []string) bool {
	for _, fragment := range skipPaths {
		if fragment != "" && strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

func userIDFromLocals(c *fiber.Ctx) uint {
	switch v := c.Locals("user_id").(type) {
	case uint:
		return v
	case int:
		if v > 0 {
			return uint(v)
		}
	case float64:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}

func roleFromLocals(c *fiber.Ctx) string {
	if role, ok := c.Locals("user_role").(string); ok {
		return role
	}
	return ""
}

func resourceIDFromParams(c *fiber.Ctx) *uint {
	for _, key := range []string{"id", "studentId", "projectId"} {
		raw := c.Params(key)
		if raw == "" {
			continue
		}
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			id := uint(parsed)
			return &id
		}
	}
	return nil
}
