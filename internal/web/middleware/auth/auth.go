// Package auth provides the session authentication middleware for the web
// application.
//
// The middleware validates the session cookie, redirects unauthenticated
// requests to the login page and adds the current user to fiber.Locals
// for handlers and templates. Local accounts flagged for a password
// change are pinned to the change-password page until they comply.
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/login"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/session"
)

// ChangePasswordPath is where accounts with a pending forced password
// change are sent.
const ChangePasswordPath = "/password"

// Middleware is a Fiber middleware that checks for user authentication.
func Middleware(c *fiber.Ctx) error {
	var (
		isLoginPage   = IsLoginPage(c)
		isLogoutPage  = IsLogoutPage(c)
		sessDataValid bool
	)

	originalURL := strings.ToLower(c.OriginalURL())
	if strings.HasPrefix(originalURL, "/static") {
		return c.Next()
	}

	// Allow logout without authentication
	if isLogoutPage {
		return c.Next()
	}

	loginCookie := c.Cookies("session")

	if loginCookie == "" && !isLoginPage {
		return c.Redirect(login.Path)
	}

	sessData := new(session.Data)
	if err := sessData.Read(loginCookie); err != nil {
		// Already on the login page, don't redirect (would cause loop)
		if isLoginPage {
			return c.Next()
		}

		return c.Redirect(login.Path)
	}

	if sessData.User.ID > 0 {
		sessDataValid = true
		c.Locals("CurrentUser", sessData.User)
	}

	if sessDataValid && isLoginPage {
		return c.Redirect("/dashboard")
	}

	// Forced password change takes precedence over everything else
	if sessDataValid && sessData.User.MustChangePassword && !sessData.User.IsDirectorySourced() &&
		!strings.HasPrefix(originalURL, ChangePasswordPath) {
		return c.Redirect(ChangePasswordPath)
	}

	return c.Next()
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())
	return strings.HasPrefix(originalURL, login.Path)
}

// IsLogoutPage checks if the current request is for the logout page.
func IsLogoutPage(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())
	return strings.HasPrefix(originalURL, "/logout")
}
