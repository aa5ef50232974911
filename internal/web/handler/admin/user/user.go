// Package user provides handlers for managing user accounts in the admin area.
package user

import (
	"errors"
	"strconv"

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
	// Path is the base path for user administration.
	Path = handler.RootPath + "admin/users"

	// ListTemplate renders the user list.
	ListTemplate = "admin/user/list"

	// FormTemplate renders the create form.
	FormTemplate = "admin/user/form"
)

// CreateForm is the local account creation payload.
type CreateForm struct {
	Username    string `form:"username" validate:"required,min=3,max=64"`
	Email       string `form:"email" validate:"omitempty,email"`
	DisplayName string `form:"display_name" validate:"max=256"`
	Password    string `form:"password" validate:"required,min=8"`
	Role        string `form:"role" validate:"required"`
}

// Service is the user administration handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	audit       *activity.Service
	validate    *validator.Validate
}

// Handler is the user administration handler.
var Handler = Service{}

// Init initializes the user administration handler. All routes require the
// SuperAdmin role.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, audit *activity.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.audit = audit
	s.validate = validator.New()

	requireSuperAdmin := auth.RequireRole(models.RoleSuperAdmin)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, requireSuperAdmin, s.List)
		router.Get("/new", requireSuperAdmin, s.NewForm)
		router.Post(handler.RouterRootPath, requireSuperAdmin, s.Create)
		router.Post("/:id/role", requireSuperAdmin, s.SetRole)
		router.Post("/:id/active", requireSuperAdmin, s.SetActive)
		router.Post("/:id/reset-password", requireSuperAdmin, s.ResetPassword)
	})
}

// List renders all user accounts.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Users", navigation.SectionAdmin, "users").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Users", Path, true)

	users, total, err := s.authService.ListUsers("", nil, 0, 0)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load users")
	}

	return handler.Render(c, ListTemplate, fiber.Map{
		"Navigation": nav,
		"Users":      users,
		"Total":      total,
		"Roles":      models.AllRoles(),
	})
}

// NewForm renders the local account creation form.
func (s *Service) NewForm(c *fiber.Ctx) error {
	return s.renderForm(c, "")
}

// Create handles local account creation. Directory accounts are never
// created here; they arrive through the AD sync.
func (s *Service) Create(c *fiber.Ctx) error {
	var f CreateForm

	if err := c.BodyParser(&f); err != nil {
		return s.renderForm(c, "Invalid form data")
	}

	if err := s.validate.Struct(&f); err != nil {
		return s.renderForm(c, "Please fill in all required fields (password min. 8 characters)")
	}

	role, err := models.ParseRole(f.Role)
	if err != nil {
		return s.renderForm(c, "Unknown role")
	}

	user, err := s.authService.CreateLocalUser(f.Username, f.Email, f.DisplayName, f.Password, role)
	if err != nil {
		if errors.Is(err, auth.ErrUserNameExists) {
			return s.renderForm(c, "A user with this username already exists")
		}

		log.Error().Err(err).Msg("failed to create user")

		return s.renderForm(c, "Failed to create user")
	}

	s.audit.Success("Create User", "Created local user "+user.Username,
		s.performer(c), models.ActivityCategoryUserManagement, c.IP())

	return c.Redirect(Path)
}

// SetRole changes a user's role.
func (s *Service) SetRole(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}

	role, err := models.ParseRole(c.FormValue("role"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Unknown role")
	}

	if err := s.authService.SetRole(userID, role); err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to set role")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to set role")
	}

	s.audit.Success("Change User Role",
		"Set role of user #"+strconv.FormatUint(userID, 10)+" to "+string(role),
		s.performer(c), models.ActivityCategoryUserManagement, c.IP())

	return c.Redirect(Path)
}

// SetActive activates or deactivates an account.
func (s *Service) SetActive(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}

	active := c.FormValue("active") == "true"

	if err := s.authService.SetActive(userID, active); err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to set active state")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to update user")
	}

	action := "Deactivate User"
	if active {
		action = "Activate User"
	}

	s.audit.Success(action, "User #"+strconv.FormatUint(userID, 10),
		s.performer(c), models.ActivityCategoryUserManagement, c.IP())

	return c.Redirect(Path)
}

// ResetPassword sets a new password on a local account.
func (s *Service) ResetPassword(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}

	password := c.FormValue("password")
	if len(password) < 8 {
		return c.Status(fiber.StatusBadRequest).SendString("Password must be at least 8 characters")
	}

	if err := s.authService.ResetPassword(userID, password); err != nil {
		if errors.Is(err, auth.ErrNotLocalAccount) {
			return c.Status(fiber.StatusBadRequest).SendString("Directory account passwords are managed in Active Directory")
		}

		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to reset password")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to reset password")
	}

	s.audit.Success("Reset Password", "Reset password of user #"+strconv.FormatUint(userID, 10),
		s.performer(c), models.ActivityCategoryUserManagement, c.IP())

	return c.Redirect(Path)
}

func (s *Service) performer(c *fiber.Ctx) string {
	if user := auth.CurrentUser(c); user != nil {
		return user.Username
	}

	return ""
}

func (s *Service) renderForm(c *fiber.Ctx, errMsg string) error {
	nav := navigation.NewContext("New User", navigation.SectionAdmin, "users").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb("New User", Path+"/new", true)

	data := fiber.Map{
		"Navigation": nav,
		"Roles":      models.AllRoles(),
	}

	if errMsg != "" {
		data["error"] = errMsg
	}

	return handler.Render(c, FormTemplate, data)
}
