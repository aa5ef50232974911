package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lostandfound-admin/lostandfound-admin/internal/auth"
)

// Render renders a template inside the base layout with the session user
// added, so the sidebar can show role-gated entries.
func Render(c *fiber.Ctx, template string, data fiber.Map) error {
	if user := auth.CurrentUser(c); user != nil {
		data["CurrentUser"] = user
	}

	return c.Render(template, data, BaseLayout)
}
