// Package password provides the self-service password change page.
package password

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lostandfound-admin/lostandfound-admin/internal/activity"
	"github.com/lostandfound-admin/lostandfound-admin/internal/auth"
	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/navigation"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/session"
)

const (
	// Path is the path to the password change page.
	Path = handler.RootPath + "password"

	// TemplateName renders the password change form.
	TemplateName = "password/change"

	// MinLength is the minimum accepted password length.
	MinLength = 8
)

// Service is the password change handler service.
type Service struct {
	cfg         *config.Config
	authService *auth.Service
	audit       *activity.Service
}

// Handler is the password change handler.
var Handler = Service{}

// Init initializes the password change handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authService *auth.Service, audit *activity.Service) {
	if app == nil || cfg == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.authService = authService
	s.audit = audit

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})
}

// Get renders the password change form.
func (s *Service) Get(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return c.Redirect("/login")
	}

	return s.render(c, user, "")
}

// Post handles the password change submission.
func (s *Service) Post(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return c.Redirect("/login")
	}

	var (
		oldPassword = c.FormValue("old_password")
		newPassword = c.FormValue("new_password")
		confirm     = c.FormValue("confirm_password")
	)

	if len(newPassword) < MinLength {
		return s.render(c, user, "New password must be at least 8 characters")
	}

	if newPassword != confirm {
		return s.render(c, user, "Passwords do not match")
	}

	if err := s.authService.ChangePassword(user.ID, oldPassword, newPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidOldPassword):
			return s.render(c, user, "Current password is incorrect")
		case errors.Is(err, auth.ErrNotLocalAccount):
			return s.render(c, user, "Directory account passwords are managed in Active Directory")
		default:
			log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to change password")

			return s.render(c, user, "Failed to change password")
		}
	}

	// Refresh the session so the must-change flag clears immediately
	if sessionID := c.Cookies("session"); sessionID != "" {
		if refreshed, err := s.authService.GetUserByID(user.ID); err == nil {
			data := &session.Data{User: *refreshed}
			if err := data.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
				log.Error().Err(err).Msg("failed to refresh session")
			}
		}
	}

	s.audit.Success("Change Password", "User changed own password",
		user.Username, models.ActivityCategoryAuth, c.IP())

	return c.Redirect("/dashboard")
}

func (s *Service) render(c *fiber.Ctx, user *models.User, errMsg string) error {
	nav := navigation.NewContext("Change Password", "", "password").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Change Password", Path, true)

	data := fiber.Map{
		"Navigation": nav,
		"MustChange": user.MustChangePassword,
	}

	if errMsg != "" {
		data["error"] = errMsg
	}

	return handler.Render(c, TemplateName, data)
}
