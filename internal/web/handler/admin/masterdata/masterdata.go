// Package masterdata provides administration of the lookup tables used by
// the found item register: categories, routes, vehicles, storage
// locations, statuses and found-by sources.
package masterdata

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lostandfound-admin/lostandfound-admin/internal/activity"
	"github.com/lostandfound-admin/lostandfound-admin/internal/auth"
	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/navigation"
)

const (
	// Path is the base path for master data administration.
	Path = handler.RootPath + "admin/masterdata"

	// ListTemplate renders one lookup table.
	ListTemplate = "admin/masterdata/list"
)

// Entry is the common shape of every lookup row for rendering.
type Entry struct {
	ID     uint
	Name   string
	Active bool
}

// kind describes one administrable lookup table.
type kind struct {
	Title string
	list  func(db *gorm.DB) ([]Entry, error)
	make  func(name string) interface{}
	model interface{}
}

func listOf[T any](toEntry func(T) Entry) func(db *gorm.DB) ([]Entry, error) {
	return func(db *gorm.DB) ([]Entry, error) {
		var rows []T

		if err := db.Order("name ASC").Find(&rows).Error; err != nil {
			return nil, err
		}

		entries := make([]Entry, len(rows))
		for i, row := range rows {
			entries[i] = toEntry(row)
		}

		return entries, nil
	}
}

// kinds maps the URL segment to its lookup table.
var kinds = map[string]kind{
	"categories": {
		Title: "Item Categories",
		list:  listOf(func(m models.ItemCategory) Entry { return Entry{m.ID, m.Name, m.Active} }),
		make:  func(name string) interface{} { return &models.ItemCategory{Name: name, Active: true} },
		model: &models.ItemCategory{},
	},
	"routes": {
		Title: "Routes",
		list:  listOf(func(m models.Route) Entry { return Entry{m.ID, m.Name, m.Active} }),
		make:  func(name string) interface{} { return &models.Route{Name: name, Active: true} },
		model: &models.Route{},
	},
	"vehicles": {
		Title: "Vehicles",
		list:  listOf(func(m models.Vehicle) Entry { return Entry{m.ID, m.Name, m.Active} }),
		make:  func(name string) interface{} { return &models.Vehicle{Name: name, Active: true} },
		model: &models.Vehicle{},
	},
	"storage-locations": {
		Title: "Storage Locations",
		list:  listOf(func(m models.StorageLocation) Entry { return Entry{m.ID, m.Name, m.Active} }),
		make:  func(name string) interface{} { return &models.StorageLocation{Name: name, Active: true} },
		model: &models.StorageLocation{},
	},
	"statuses": {
		Title: "Item Statuses",
		list:  listOf(func(m models.ItemStatus) Entry { return Entry{m.ID, m.Name, m.Active} }),
		make:  func(name string) interface{} { return &models.ItemStatus{Name: name, Active: true} },
		model: &models.ItemStatus{},
	},
	"found-by": {
		Title: "Found By Sources",
		list:  listOf(func(m models.FoundBySource) Entry { return Entry{m.ID, m.Name, m.Active} }),
		make:  func(name string) interface{} { return &models.FoundBySource{Name: name, Active: true} },
		model: &models.FoundBySource{},
	},
}

// Service is the master data handler service.
type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	audit *activity.Service
}

// Handler is the master data handler.
var Handler = Service{}

// Init initializes the master data handler. Supervisors and above may
// manage lookup tables.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, audit *activity.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.audit = audit

	requireSupervisor := auth.RequireRole(models.RoleSupervisor)

	app.Route(Path, func(router fiber.Router) {
		router.Get("/:kind", requireSupervisor, s.List)
		router.Post("/:kind", requireSupervisor, s.Create)
		router.Post("/:kind/:id/active", requireSupervisor, s.SetActive)
	})
}

// List renders one lookup table.
func (s *Service) List(c *fiber.Ctx) error {
	return s.renderList(c, "")
}

// Create adds a new entry to a lookup table.
func (s *Service) Create(c *fiber.Ctx) error {
	k, ok := kinds[c.Params("kind")]
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("Unknown master data type")
	}

	name := c.FormValue("name")
	if name == "" {
		return s.renderList(c, "Name is required")
	}

	if err := s.db.Create(k.make(name)).Error; err != nil {
		log.Error().Err(err).Str("kind", c.Params("kind")).Msg("failed to create master data entry")

		return s.renderList(c, "Failed to create entry, the name may already exist")
	}

	s.audit.Success("Create Master Data", "Added "+name+" to "+k.Title,
		s.performer(c), models.ActivityCategoryMasterData, c.IP())

	return c.Redirect(Path + "/" + c.Params("kind"))
}

// SetActive enables or disables an entry. Disabled entries disappear from
// intake form dropdowns but keep their historical references.
func (s *Service) SetActive(c *fiber.Ctx) error {
	k, ok := kinds[c.Params("kind")]
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("Unknown master data type")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid ID")
	}

	active := c.FormValue("active") == "true"

	if err := s.db.Model(k.model).Where("id = ?", uint(id)).Update("active", active).Error; err != nil {
		log.Error().Err(err).Str("kind", c.Params("kind")).Msg("failed to update master data entry")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to update entry")
	}

	s.audit.Success("Update Master Data",
		k.Title+" entry #"+strconv.FormatUint(id, 10)+" active="+strconv.FormatBool(active),
		s.performer(c), models.ActivityCategoryMasterData, c.IP())

	return c.Redirect(Path + "/" + c.Params("kind"))
}

func (s *Service) performer(c *fiber.Ctx) string {
	if user := auth.CurrentUser(c); user != nil {
		return user.Username
	}

	return ""
}

func (s *Service) renderList(c *fiber.Ctx, errMsg string) error {
	kindName := c.Params("kind")

	k, ok := kinds[kindName]
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("Unknown master data type")
	}

	entries, err := k.list(s.db)
	if err != nil {
		log.Error().Err(err).Str("kind", kindName).Msg("failed to load master data")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load master data")
	}

	nav := navigation.NewContext(k.Title, navigation.SectionAdmin, "masterdata-"+kindName).
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb(k.Title, Path+"/"+kindName, true)

	data := fiber.Map{
		"Navigation": nav,
		"Kind":       kindName,
		"Title":      k.Title,
		"Entries":    entries,
	}

	if errMsg != "" {
		data["error"] = errMsg
	}

	return handler.Render(c, ListTemplate, data)
}
