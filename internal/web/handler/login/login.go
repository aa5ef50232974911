// Package login provides the login page and credential verification.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lostandfound-admin/lostandfound-admin/internal/activity"
	"github.com/lostandfound-admin/lostandfound-admin/internal/auth"
	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// TemplateName is the name of the login template.
	TemplateName = "login"
)

// form is the login form payload.
type form struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// Service is the login handler service.
type Service struct {
	cfg         *config.Config
	authService *auth.Service
	audit       *activity.Service
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authService *auth.Service, audit *activity.Service) error {
	if app == nil || cfg == nil || authService == nil {
		return errors.New("app, cfg or auth service is nil")
	}

	s.cfg = cfg
	s.authService = authService
	s.audit = audit

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, fiber.Map{
		"Title":     s.cfg.Title,
		"ADEnabled": s.cfg.Directory.Enabled,
	})
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	var f form

	if err := c.BodyParser(&f); err != nil {
		return s.renderError(c, "Invalid form data")
	}

	user, err := s.authService.Login(f.Username, f.Password)
	if err != nil {
		s.audit.Failure("Login", "Failed login attempt for "+f.Username, f.Username, models.ActivityCategoryAuth, c.IP())

		switch {
		case errors.Is(err, auth.ErrUserAccountDisabled):
			return s.renderError(c, "Account is disabled")
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrDirectoryUnavailable):
			return s.renderError(c, "Invalid username or password")
		default:
			log.Error().Err(err).Str("username", f.Username).Msg("login failed")

			return s.renderError(c, "Internal server error")
		}
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		return s.renderError(c, "Internal server error")
	}

	userSession := &session.Data{User: *user}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return s.renderError(c, "Internal server error")
	}

	cookieSettings := &fiber.Cookie{
		Name:     "session",
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	s.audit.Success("Login", "User logged in", user.Username, models.ActivityCategoryAuth, c.IP())

	return c.Redirect("/dashboard")
}

func (s *Service) renderError(c *fiber.Ctx, message string) error {
	return c.Render(TemplateName, fiber.Map{
		"Title":     s.cfg.Title,
		"ADEnabled": s.cfg.Directory.Enabled,
		"error":     message,
	})
}
