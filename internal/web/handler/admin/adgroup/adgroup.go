// Package adgroup provides handlers for AD group to role mappings and the
// manual synchronization trigger.
package adgroup

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lostandfound-admin/lostandfound-admin/internal/activity"
	"github.com/lostandfound-admin/lostandfound-admin/internal/auth"
	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/controller/setting"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/dirsync"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/navigation"
)

const (
	// Path is the base path for AD group mapping administration.
	Path = handler.RootPath + "admin/ad-groups"

	// ListTemplate renders the mapping list and sync controls.
	ListTemplate = "admin/adgroup/list"
)

// Form is the mapping create payload.
type Form struct {
	GroupName  string `form:"group_name" validate:"required,max=256"`
	MappedRole string `form:"mapped_role" validate:"required"`
}

// Service is the AD group mapping handler service.
type Service struct {
	cfg        *config.Config
	db         *gorm.DB
	reconciler *dirsync.Reconciler
	audit      *activity.Service
	validate   *validator.Validate
}

// Handler is the AD group mapping handler.
var Handler = Service{}

// Init initializes the AD group mapping handler. All routes require the
// SuperAdmin role.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, reconciler *dirsync.Reconciler, audit *activity.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.reconciler = reconciler
	s.audit = audit
	s.validate = validator.New()

	requireSuperAdmin := auth.RequireRole(models.RoleSuperAdmin)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, requireSuperAdmin, s.List)
		router.Post(handler.RouterRootPath, requireSuperAdmin, s.Create)
		router.Post("/:id/active", requireSuperAdmin, s.SetActive)
		router.Post("/:id/delete", requireSuperAdmin, s.Delete)
		router.Post("/sync", requireSuperAdmin, s.SyncNow)
	})
}

// List renders the mapping list.
func (s *Service) List(c *fiber.Ctx) error {
	return s.renderList(c, "", "")
}

// Create adds a new group mapping.
func (s *Service) Create(c *fiber.Ctx) error {
	var f Form

	if err := c.BodyParser(&f); err != nil {
		return s.renderList(c, "", "Invalid form data")
	}

	if err := s.validate.Struct(&f); err != nil {
		return s.renderList(c, "", "Group name and role are required")
	}

	role, err := models.ParseRole(f.MappedRole)
	if err != nil {
		return s.renderList(c, "", "Unknown role")
	}

	mapping := models.ADGroupMapping{
		GroupName:  f.GroupName,
		MappedRole: role,
		Active:     true,
	}

	if err := s.db.Create(&mapping).Error; err != nil {
		log.Error().Err(err).Str("group", f.GroupName).Msg("failed to create AD group mapping")

		return s.renderList(c, "", "Failed to create mapping, the group may already be mapped")
	}

	s.audit.Success("Create AD Group Mapping",
		"Mapped AD group "+f.GroupName+" to role "+string(role),
		s.performer(c), models.ActivityCategoryADSync, c.IP())

	return c.Redirect(Path)
}

// SetActive enables or disables a mapping. Disabled mappings are ignored
// by the synchronization.
func (s *Service) SetActive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid mapping ID")
	}

	active := c.FormValue("active") == "true"

	if err := s.db.Model(&models.ADGroupMapping{}).Where("id = ?", id).Update("active", active).Error; err != nil {
		log.Error().Err(err).Uint64("mapping_id", id).Msg("failed to update AD group mapping")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to update mapping")
	}

	s.audit.Success("Update AD Group Mapping",
		"Set mapping #"+strconv.FormatUint(id, 10)+" active="+strconv.FormatBool(active),
		s.performer(c), models.ActivityCategoryADSync, c.IP())

	return c.Redirect(Path)
}

// Delete removes a mapping. Users provisioned through it stay until the
// next sync deactivates them.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid mapping ID")
	}

	if err := s.db.Delete(&models.ADGroupMapping{}, id).Error; err != nil {
		log.Error().Err(err).Uint64("mapping_id", id).Msg("failed to delete AD group mapping")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to delete mapping")
	}

	s.audit.Success("Delete AD Group Mapping", "Deleted mapping #"+strconv.FormatUint(id, 10),
		s.performer(c), models.ActivityCategoryADSync, c.IP())

	return c.Redirect(Path)
}

// SyncNow runs one synchronization pass and renders the summary.
func (s *Service) SyncNow(c *fiber.Ctx) error {
	if s.reconciler == nil {
		return s.renderList(c, "", "Active Directory integration is disabled")
	}

	result := s.reconciler.Run()

	status := models.ActivityStatusSuccess
	if !result.Success {
		status = models.ActivityStatusFailed
	}

	s.audit.Log("Manual AD Sync", result.Summary(), s.performer(c),
		models.ActivityCategoryADSync, c.IP(), status)

	err := setting.SetLastSync(s.db, setting.SyncStatus{
		At:      time.Now().UTC(),
		Success: result.Success,
		Summary: result.Summary(),
		Actor:   s.performer(c),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to record sync outcome")
	}

	if !result.Success {
		return s.renderList(c, "", result.Summary())
	}

	return s.renderList(c, result.Summary(), "")
}

func (s *Service) performer(c *fiber.Ctx) string {
	if user := auth.CurrentUser(c); user != nil {
		return user.Username
	}

	return ""
}

func (s *Service) renderList(c *fiber.Ctx, info, errMsg string) error {
	nav := navigation.NewContext("AD Group Mappings", navigation.SectionAdmin, "ad-groups").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("AD Group Mappings", Path, true)

	var mappings []models.ADGroupMapping

	if err := s.db.Order("group_name ASC").Find(&mappings).Error; err != nil {
		log.Error().Err(err).Msg("failed to load AD group mappings")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load mappings")
	}

	data := fiber.Map{
		"Navigation": nav,
		"Mappings":   mappings,
		"Roles":      models.AllRoles(),
		"ADEnabled":  s.cfg.Directory.Enabled,
	}

	if info != "" {
		data["info"] = info
	}

	if errMsg != "" {
		data["error"] = errMsg
	}

	return handler.Render(c, ListTemplate, data)
}
