// Package dashboard provides the landing page with item statistics.
package dashboard

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/controller/setting"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	// RecentItemCount is how many of the latest found items the dashboard shows.
	RecentItemCount = 10

	// UnclaimedCutoffDays marks items as long-unclaimed after this many days.
	UnclaimedCutoffDays = 30
)

// StatusCount is one slice of the status breakdown.
type StatusCount struct {
	StatusName string
	Count      int64
}

// Service is the dashboard handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	app.Get(Path, s.Get)
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Dashboard", navigation.SectionDashboard, "dashboard").
		AddBreadcrumb("Home", Path, false).
		AddBreadcrumb("Dashboard", Path, true)

	var totalItems int64
	if err := s.db.Model(&models.FoundItem{}).Count(&totalItems).Error; err != nil {
		log.Error().Err(err).Msg("failed to count found items")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load dashboard")
	}

	var statusCounts []StatusCount

	err := s.db.Model(&models.FoundItem{}).
		Select("item_statuses.name AS status_name, COUNT(*) AS count").
		Joins("JOIN item_statuses ON item_statuses.id = found_items.status_id").
		Group("item_statuses.name").
		Order("item_statuses.name ASC").
		Scan(&statusCounts).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load status breakdown")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load dashboard")
	}

	var recent []models.FoundItem

	err = s.db.
		Preload("Category").
		Preload("Status").
		Order("date_found DESC, tracking_id DESC").
		Limit(RecentItemCount).
		Find(&recent).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load recent items")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load dashboard")
	}

	var unclaimedOverCutoff int64

	cutoff := time.Now().UTC().AddDate(0, 0, -UnclaimedCutoffDays)

	err = s.db.Model(&models.FoundItem{}).
		Joins("JOIN item_statuses ON item_statuses.id = found_items.status_id").
		Where("found_items.date_found <= ?", cutoff).
		Where("item_statuses.name NOT IN ?", []string{"Claimed", "Disposed"}).
		Count(&unclaimedOverCutoff).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to count long-unclaimed items")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load dashboard")
	}

	// Last AD sync outcome, manual or scheduled. Absent until a sync has run.
	lastSync, err := setting.LastSync(s.db)
	if err != nil && !errors.Is(err, setting.ErrSettingNotFound) {
		log.Error().Err(err).Msg("failed to load last sync status")
	}

	return handler.Render(c, TemplateName, fiber.Map{
		"Navigation":          nav,
		"TotalItems":          totalItems,
		"StatusCounts":        statusCounts,
		"RecentItems":         recent,
		"UnclaimedOverCutoff": unclaimedOverCutoff,
		"UnclaimedCutoffDays": UnclaimedCutoffDays,
		"LastSync":            lastSync,
	})
}
