// Package announcement provides the announcement inbox and popup flow for
// users plus the admin publishing screens.
package announcement

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lostandfound-admin/lostandfound-admin/internal/activity"
	"github.com/lostandfound-admin/lostandfound-admin/internal/auth"
	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/navigation"
)

const (
	// Path is the base path for the user-facing announcement inbox.
	Path = handler.RootPath + "announcements"

	// AdminPath is the base path for announcement administration.
	AdminPath = handler.RootPath + "admin/announcements"

	// InboxTemplate renders the user inbox.
	InboxTemplate = "announcement/inbox"

	// AdminTemplate renders the publishing screen.
	AdminTemplate = "admin/announcement/list"

	dateLayout = "2006-01-02"
)

// Form is the announcement publishing payload.
type Form struct {
	Title      string `form:"title" validate:"required,max=200"`
	Message    string `form:"message" validate:"required,max=4000"`
	TargetRole string `form:"target_role" validate:"required"`
	ExpiresAt  string `form:"expires_at"`
}

// InboxEntry pairs an announcement with the viewer's read state.
type InboxEntry struct {
	Announcement models.Announcement
	Dismissed    bool
}

// Service is the announcement handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	audit    *activity.Service
	validate *validator.Validate
}

// Handler is the announcement handler.
var Handler = Service{}

// Init initializes the announcement handler. Publishing requires the
// SuperAdmin role; the inbox is open to every authenticated user.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, audit *activity.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.audit = audit
	s.validate = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Inbox)
		router.Get("/popup", s.Popup)
		router.Post("/:id/dismiss", s.Dismiss)
	})

	requireSuperAdmin := auth.RequireRole(models.RoleSuperAdmin)

	app.Route(AdminPath, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, requireSuperAdmin, s.AdminList)
		router.Post(handler.RouterRootPath, requireSuperAdmin, s.Create)
		router.Post("/:id/active", requireSuperAdmin, s.SetActive)
	})
}

// Inbox renders every announcement addressed to the viewer.
func (s *Service) Inbox(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	nav := navigation.NewContext("Announcements", navigation.SectionAnnouncements, "inbox").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Announcements", Path, true)

	announcements, err := s.visibleFor(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load announcements")
	}

	reads, err := s.readStates(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load announcements")
	}

	entries := make([]InboxEntry, 0, len(announcements))

	for _, a := range announcements {
		read, seen := reads[a.ID]
		entries = append(entries, InboxEntry{
			Announcement: a,
			Dismissed:    seen && read.DismissedAt != nil,
		})

		if !seen {
			s.markRead(user.ID, a.ID, false)
		}
	}

	return handler.Render(c, InboxTemplate, fiber.Map{
		"Navigation": nav,
		"Entries":    entries,
	})
}

// Popup returns the announcements to pop up for the viewer and counts the
// display. An announcement pops up until dismissed or shown MaxPopupShows
// times.
func (s *Service) Popup(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	announcements, err := s.visibleFor(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load announcements"})
	}

	reads, err := s.readStates(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load announcements"})
	}

	popups := make([]models.Announcement, 0)

	for _, a := range announcements {
		read, seen := reads[a.ID]

		if seen && (read.DismissedAt != nil || read.PopupShownCount >= models.MaxPopupShows) {
			continue
		}

		popups = append(popups, a)
		s.markRead(user.ID, a.ID, true)
	}

	return c.JSON(fiber.Map{"announcements": popups})
}

// Dismiss marks an announcement as dismissed for the viewer. Dismissed
// announcements stay in the inbox but stop popping up.
func (s *Service) Dismiss(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid announcement ID")
	}

	now := time.Now()

	err = s.db.Model(&models.AnnouncementRead{}).
		Where("announcement_id = ? AND user_id = ?", uint(id), user.ID).
		Update("dismissed_at", &now).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to dismiss announcement")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to dismiss announcement")
	}

	return c.Redirect(Path)
}

// AdminList renders the publishing screen.
func (s *Service) AdminList(c *fiber.Ctx) error {
	return s.renderAdmin(c, "")
}

// Create publishes a new announcement.
func (s *Service) Create(c *fiber.Ctx) error {
	var f Form

	if err := c.BodyParser(&f); err != nil {
		return s.renderAdmin(c, "Invalid form data")
	}

	if err := s.validate.Struct(&f); err != nil {
		return s.renderAdmin(c, "Title, message and target are required")
	}

	if f.TargetRole != models.AnnouncementTargetAll {
		if _, err := models.ParseRole(f.TargetRole); err != nil {
			return s.renderAdmin(c, "Unknown target role")
		}
	}

	announcement := models.Announcement{
		Title:      f.Title,
		Message:    f.Message,
		TargetRole: f.TargetRole,
		Active:     true,
	}

	if user := auth.CurrentUser(c); user != nil {
		announcement.CreatedBy = user.Username
	}

	if f.ExpiresAt != "" {
		expires, err := time.Parse(dateLayout, f.ExpiresAt)
		if err != nil {
			return s.renderAdmin(c, "Invalid expiry date")
		}

		announcement.ExpiresAt = &expires
	}

	if err := s.db.Create(&announcement).Error; err != nil {
		log.Error().Err(err).Msg("failed to create announcement")

		return s.renderAdmin(c, "Failed to publish announcement")
	}

	s.audit.Success("Create Announcement", "Published announcement: "+f.Title,
		announcement.CreatedBy, models.ActivityCategoryAnnouncements, c.IP())

	return c.Redirect(AdminPath)
}

// SetActive shows or hides an announcement.
func (s *Service) SetActive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid announcement ID")
	}

	active := c.FormValue("active") == "true"

	if err := s.db.Model(&models.Announcement{}).Where("id = ?", uint(id)).Update("active", active).Error; err != nil {
		log.Error().Err(err).Msg("failed to update announcement")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to update announcement")
	}

	performer := ""
	if user := auth.CurrentUser(c); user != nil {
		performer = user.Username
	}

	s.audit.Success("Update Announcement",
		"Announcement #"+strconv.FormatUint(id, 10)+" active="+strconv.FormatBool(active),
		performer, models.ActivityCategoryAnnouncements, c.IP())

	return c.Redirect(AdminPath)
}

// visibleFor returns active, unexpired announcements addressed to the user.
func (s *Service) visibleFor(user *models.User) ([]models.Announcement, error) {
	var announcements []models.Announcement

	now := time.Now()

	err := s.db.
		Where("active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Where("target_role = ? OR target_role = ?", models.AnnouncementTargetAll, string(user.Role)).
		Order("created_at DESC").
		Find(&announcements).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load announcements")
		return nil, err
	}

	return announcements, nil
}

// readStates returns the user's read rows keyed by announcement ID.
func (s *Service) readStates(userID uint64) (map[uint]models.AnnouncementRead, error) {
	var reads []models.AnnouncementRead

	if err := s.db.Where("user_id = ?", userID).Find(&reads).Error; err != nil {
		log.Error().Err(err).Msg("failed to load announcement read states")
		return nil, err
	}

	states := make(map[uint]models.AnnouncementRead, len(reads))
	for _, r := range reads {
		states[r.AnnouncementID] = r
	}

	return states, nil
}

// markRead upserts the read row, optionally counting a popup display.
func (s *Service) markRead(userID uint64, announcementID uint, popup bool) {
	read := models.AnnouncementRead{
		AnnouncementID:  announcementID,
		UserID:          userID,
		FirstReadAt:     time.Now(),
		PopupShownCount: 0,
	}

	if popup {
		read.PopupShownCount = 1
	}

	assignments := map[string]interface{}{}
	if popup {
		assignments["popup_shown_count"] = gorm.Expr("popup_shown_count + 1")
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "announcement_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(assignments),
		DoNothing: !popup,
	}).Create(&read).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to record announcement read state")
	}
}

func (s *Service) renderAdmin(c *fiber.Ctx, errMsg string) error {
	nav := navigation.NewContext("Announcements", navigation.SectionAdmin, "announcements").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Announcements", AdminPath, true)

	var announcements []models.Announcement

	if err := s.db.Order("created_at DESC").Find(&announcements).Error; err != nil {
		log.Error().Err(err).Msg("failed to load announcements")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load announcements")
	}

	targets := []string{models.AnnouncementTargetAll}
	for _, role := range models.AllRoles() {
		targets = append(targets, string(role))
	}

	data := fiber.Map{
		"Navigation":    nav,
		"Announcements": announcements,
		"Targets":       targets,
	}

	if errMsg != "" {
		data["error"] = errMsg
	}

	return handler.Render(c, AdminTemplate, data)
}
