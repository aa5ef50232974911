package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/session"
)

// RequireRole creates Fiber middleware that requires the session user to
// hold at least the given role. Roles are strictly ordered, so a
// SuperAdmin passes every check a Supervisor passes.
func RequireRole(minimum models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies("session")
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		if sessionData.User.ID == 0 {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		if sessionData.User.Role.Rank() < minimum.Rank() {
			log.Warn().
				Uint64("user_id", sessionData.User.ID).
				Str("role", string(sessionData.User.Role)).
				Str("required", string(minimum)).
				Msg("user lacks required role")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// CurrentUser returns the session user for the request, or nil when the
// request is unauthenticated.
func CurrentUser(c *fiber.Ctx) *models.User {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return nil
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return nil
	}

	if sessionData.User.ID == 0 {
		return nil
	}

	return &sessionData.User
}
