// Package logs provides the activity log screen.
package logs

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lostandfound-admin/lostandfound-admin/internal/activity"
	"github.com/lostandfound-admin/lostandfound-admin/internal/auth"
	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/navigation"
)

const (
	// Path is the base path for the activity log screen.
	Path = handler.RootPath + "logs"

	// ListTemplate renders the activity log.
	ListTemplate = "logs/list"

	// DefaultLimit is the maximum number of entries shown.
	DefaultLimit = 200
)

// Categories offered in the filter dropdown.
var Categories = []string{
	models.ActivityCategoryAuth,
	models.ActivityCategoryADSync,
	models.ActivityCategoryUserManagement,
	models.ActivityCategoryMasterData,
	models.ActivityCategoryItems,
	models.ActivityCategoryAnnouncements,
	models.ActivityCategorySystem,
}

// Service is the activity log handler service.
type Service struct {
	cfg   *config.Config
	audit *activity.Service
}

// Handler is the activity log handler.
var Handler = Service{}

// Init initializes the activity log handler. Everyone may view; plain
// users only see their own entries. Clearing is restricted to SuperAdmin.
func (s *Service) Init(app *fiber.App, cfg *config.Config, audit *activity.Service) {
	if app == nil || cfg == nil || audit == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.audit = audit

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, auth.RequireRole(models.RoleUser), s.List)
		router.Post("/clear", auth.RequireRole(models.RoleSuperAdmin), s.Clear)
	})
}

// List renders the activity log with optional filters.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Activity Log", navigation.SectionLogs, "list").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Activity Log", Path, true)

	viewer := auth.CurrentUser(c)

	filter := activity.Filter{
		Category:    c.Query("category", ""),
		Status:      c.Query("status", ""),
		PerformedBy: c.Query("user", ""),
	}

	// Plain users only see what they did themselves.
	if viewer != nil && viewer.Role == models.RoleUser {
		filter.PerformedBy = viewer.Username
	}

	entries, err := s.audit.List(filter, DefaultLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to load activity log")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load activity log")
	}

	canClear := viewer != nil && viewer.Role == models.RoleSuperAdmin

	return handler.Render(c, ListTemplate, fiber.Map{
		"Navigation": nav,
		"Entries":    entries,
		"Categories": Categories,
		"Filter":     filter,
		"CanClear":   canClear,
	})
}

// Clear wipes the activity log.
func (s *Service) Clear(c *fiber.Ctx) error {
	performer := ""
	if user := auth.CurrentUser(c); user != nil {
		performer = user.Username
	}

	if err := s.audit.Clear(performer, c.IP()); err != nil {
		log.Error().Err(err).Msg("failed to clear activity log")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to clear activity log")
	}

	return c.Redirect(Path)
}
