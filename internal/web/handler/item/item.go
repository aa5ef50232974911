// Package item provides handlers for the found item register: listing,
// intake, editing and status changes.
package item

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
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/navigation"
)

const (
	// Path is the base path for found item pages.
	Path = handler.RootPath + "items"

	// ListTemplate renders the item register.
	ListTemplate = "item/list"

	// FormTemplate renders the intake and edit form.
	FormTemplate = "item/form"

	// DetailTemplate renders the read-only item view.
	DetailTemplate = "item/detail"

	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 25

	dateLayout = "2006-01-02"
)

// Form is the intake/edit form payload.
type Form struct {
	DateFound         string `form:"date_found" validate:"required"`
	CategoryID        uint   `form:"category_id" validate:"required"`
	Description       string `form:"description" validate:"required,max=500"`
	LocationFound     string `form:"location_found" validate:"required,max=300"`
	RouteID           uint   `form:"route_id"`
	VehicleID         uint   `form:"vehicle_id"`
	StorageLocationID uint   `form:"storage_location_id"`
	FoundByID         uint   `form:"found_by_id"`
	StatusID          uint   `form:"status_id" validate:"required"`
	ClaimedBy         string `form:"claimed_by" validate:"max=200"`
	Notes             string `form:"notes" validate:"max=1000"`
}

// Service is the found item handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	audit    *activity.Service
	validate *validator.Validate
}

// Handler is the found item handler.
var Handler = Service{}

// Init initializes the found item handler.
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
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/new", s.NewForm)
		router.Post(handler.RouterRootPath, s.Create)
		router.Get("/:id/edit", s.EditForm)
		router.Get("/:id", s.Details)
		router.Post("/:id", s.Update)
		router.Post("/:id/status", s.ChangeStatus)
	})
}

// List renders the item register with search, status filter and pagination.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Found Items", navigation.SectionItems, "list").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Found Items", Path, true)

	var (
		page     = c.QueryInt("page", 1)
		pageSize = c.QueryInt("pageSize", DefaultPageSize)
		search   = c.Query("search", "")
		statusID = c.QueryInt("status", 0)
	)

	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	query := s.db.Model(&models.FoundItem{}).
		Preload("Category").
		Preload("Status").
		Preload("StorageLocation")

	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"description LIKE ? OR location_found LIKE ? OR claimed_by LIKE ?",
			like, like, like,
		)
	}

	if statusID > 0 {
		query = query.Where("status_id = ?", statusID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("failed to count items")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load items")
	}

	var items []models.FoundItem

	err := query.
		Order("date_found DESC, tracking_id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load items")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load items")
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	statuses, err := s.activeStatuses()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load items")
	}

	return handler.Render(c, ListTemplate, fiber.Map{
		"Navigation":  nav,
		"Items":       items,
		"Statuses":    statuses,
		"Search":      search,
		"StatusID":    statusID,
		"Page":        page,
		"PageSize":    pageSize,
		"TotalItems":  total,
		"TotalPages":  totalPages,
		"HasPrevPage": page > 1,
		"HasNextPage": page < totalPages,
	})
}

// NewForm renders the empty intake form.
func (s *Service) NewForm(c *fiber.Ctx) error {
	return s.renderForm(c, &models.FoundItem{DateFound: time.Now()}, "")
}

// Create handles intake form submission.
func (s *Service) Create(c *fiber.Ctx) error {
	var f Form

	if err := c.BodyParser(&f); err != nil {
		return s.renderForm(c, &models.FoundItem{}, "Invalid form data")
	}

	if err := s.validate.Struct(&f); err != nil {
		return s.renderForm(c, &models.FoundItem{}, "Please fill in all required fields")
	}

	item, errMsg := s.itemFromForm(&f, &models.FoundItem{})
	if errMsg != "" {
		return s.renderForm(c, item, errMsg)
	}

	user := auth.CurrentUser(c)
	if user != nil {
		item.CreatedBy = user.Username
	}

	if err := s.db.Create(item).Error; err != nil {
		log.Error().Err(err).Msg("failed to create item")

		return s.renderForm(c, item, "Failed to save item")
	}

	s.audit.Success("Create Item",
		"Registered found item #"+strconv.FormatUint(uint64(item.TrackingID), 10),
		item.CreatedBy, models.ActivityCategoryItems, c.IP())

	return c.Redirect(Path)
}

// Details renders the read-only view of an item with all lookups resolved.
func (s *Service) Details(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Item not found")
	}

	var item models.FoundItem

	err = s.db.
		Preload("Category").
		Preload("Status").
		Preload("Route").
		Preload("Vehicle").
		Preload("StorageLocation").
		Preload("FoundBy").
		First(&item, uint(id)).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Item not found")
	}

	nav := navigation.NewContext("Item Details", navigation.SectionItems, "detail").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Found Items", Path, false).
		AddBreadcrumb("#"+strconv.FormatUint(uint64(item.TrackingID), 10), "", true)

	return handler.Render(c, DetailTemplate, fiber.Map{
		"Navigation": nav,
		"Item":       item,
	})
}

// EditForm renders the edit form for an existing item.
func (s *Service) EditForm(c *fiber.Ctx) error {
	item, err := s.loadItem(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Item not found")
	}

	return s.renderForm(c, item, "")
}

// Update handles edit form submission.
func (s *Service) Update(c *fiber.Ctx) error {
	item, err := s.loadItem(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Item not found")
	}

	var f Form

	if err := c.BodyParser(&f); err != nil {
		return s.renderForm(c, item, "Invalid form data")
	}

	if err := s.validate.Struct(&f); err != nil {
		return s.renderForm(c, item, "Please fill in all required fields")
	}

	previousStatus := item.StatusID

	item, errMsg := s.itemFromForm(&f, item)
	if errMsg != "" {
		return s.renderForm(c, item, errMsg)
	}

	if item.StatusID != previousStatus {
		now := time.Now()
		item.StatusDate = &now
	}

	if err := s.db.Save(item).Error; err != nil {
		log.Error().Err(err).Msg("failed to update item")

		return s.renderForm(c, item, "Failed to save item")
	}

	performer := ""
	if user := auth.CurrentUser(c); user != nil {
		performer = user.Username
	}

	s.audit.Success("Update Item",
		"Updated found item #"+strconv.FormatUint(uint64(item.TrackingID), 10),
		performer, models.ActivityCategoryItems, c.IP())

	return c.Redirect(Path)
}

// ChangeStatus moves an item to a new lifecycle status.
func (s *Service) ChangeStatus(c *fiber.Ctx) error {
	item, err := s.loadItem(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Item not found")
	}

	statusID, err := strconv.ParseUint(c.FormValue("status_id"), 10, 32)
	if err != nil || statusID == 0 {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid status")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status_id":   uint(statusID),
		"status_date": &now,
	}

	if claimedBy := c.FormValue("claimed_by"); claimedBy != "" {
		updates["claimed_by"] = claimedBy
	}

	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		log.Error().Err(err).Msg("failed to change item status")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to change status")
	}

	performer := ""
	if user := auth.CurrentUser(c); user != nil {
		performer = user.Username
	}

	s.audit.Success("Change Item Status",
		"Changed status of item #"+strconv.FormatUint(uint64(item.TrackingID), 10),
		performer, models.ActivityCategoryItems, c.IP())

	return c.Redirect(Path)
}

func (s *Service) loadItem(c *fiber.Ctx) (*models.FoundItem, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, err
	}

	var item models.FoundItem

	if err := s.db.First(&item, uint(id)).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

// itemFromForm copies validated form values onto the item. Returns a user
// facing message when a value cannot be parsed.
func (s *Service) itemFromForm(f *Form, item *models.FoundItem) (*models.FoundItem, string) {
	dateFound, err := time.Parse(dateLayout, f.DateFound)
	if err != nil {
		return item, "Invalid date"
	}

	if dateFound.After(time.Now()) {
		return item, "Date found cannot be in the future"
	}

	item.DateFound = dateFound
	item.CategoryID = f.CategoryID
	item.Description = f.Description
	item.LocationFound = f.LocationFound
	item.StatusID = f.StatusID
	item.ClaimedBy = f.ClaimedBy
	item.Notes = f.Notes
	item.RouteID = optionalID(f.RouteID)
	item.VehicleID = optionalID(f.VehicleID)
	item.StorageLocationID = optionalID(f.StorageLocationID)
	item.FoundByID = optionalID(f.FoundByID)

	return item, ""
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}

	return &id
}

func (s *Service) activeStatuses() ([]models.ItemStatus, error) {
	var statuses []models.ItemStatus

	if err := s.db.Where("active = ?", true).Order("name ASC").Find(&statuses).Error; err != nil {
		log.Error().Err(err).Msg("failed to load item statuses")
		return nil, err
	}

	return statuses, nil
}

// renderForm renders the intake/edit form with all lookup data.
func (s *Service) renderForm(c *fiber.Ctx, item *models.FoundItem, errMsg string) error {
	title := "Register Found Item"
	page := "new"

	if item.TrackingID != 0 {
		title = "Edit Found Item"
		page = "edit"
	}

	nav := navigation.NewContext(title, navigation.SectionItems, page).
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Found Items", Path, false).
		AddBreadcrumb(title, "", true)

	lookups := fiber.Map{}

	for name, dest := range map[string]interface{}{
		"Categories":       &[]models.ItemCategory{},
		"Routes":           &[]models.Route{},
		"Vehicles":         &[]models.Vehicle{},
		"StorageLocations": &[]models.StorageLocation{},
		"FoundBySources":   &[]models.FoundBySource{},
		"Statuses":         &[]models.ItemStatus{},
	} {
		if err := s.db.Where("active = ?", true).Order("name ASC").Find(dest).Error; err != nil {
			log.Error().Err(err).Str("lookup", name).Msg("failed to load lookup data")

			return c.Status(fiber.StatusInternalServerError).SendString("Failed to load form")
		}

		lookups[name] = dest
	}

	data := fiber.Map{
		"Navigation": nav,
		"Item":       item,
		"DateFound":  item.DateFound.Format(dateLayout),
	}

	for k, v := range lookups {
		data[k] = v
	}

	if errMsg != "" {
		data["error"] = errMsg
	}

	return handler.Render(c, FormTemplate, data)
}
