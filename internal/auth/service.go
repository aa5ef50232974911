// Package auth provides authentication and user administration.
//
// Two credential sources exist: local accounts with Argon2id password
// hashes, and Active Directory accounts whose credentials are verified
// against the directory. AD accounts are provisioned by the directory
// sync, never at login time; a successful directory bind for an unknown
// username still fails the login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/directory"
)

// Service authenticates users and manages local accounts.
type Service struct {
	db        *gorm.DB
	validator directory.CredentialValidator
}

// NewService creates an auth service. validator may be nil when directory
// integration is disabled; AD-sourced accounts then cannot log in.
func NewService(db *gorm.DB, validator directory.CredentialValidator) *Service {
	return &Service{
		db:        db,
		validator: validator,
	}
}

// Login verifies credentials and returns the authenticated user. The
// credential source follows the account: AD-sourced accounts bind against
// the directory, local accounts check the stored hash.
func (s *Service) Login(username, password string) (*models.User, error) {
	var user models.User

	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if user.IsDirectorySourced() {
		if s.validator == nil {
			return nil, ErrDirectoryUnavailable
		}

		if !s.validator.ValidateCredentials(user.SamAccountName, password) {
			return nil, ErrInvalidCredentials
		}
	} else if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	user.UpdatedAt = time.Now()
	s.db.Model(&user).Update("updated_at", user.UpdatedAt)

	return &user, nil
}

// CreateLocalUser creates a local account with a hashed password. New
// accounts must change the initial password on first login.
func (s *Service) CreateLocalUser(username, email, displayName, password string, role models.Role) (*models.User, error) {
	var existing models.User

	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUserNameExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Active:             true,
		Username:           username,
		Email:              email,
		DisplayName:        displayName,
		Password:           models.HashPassword(password),
		Role:               role,
		AuthSource:         models.AuthSourceLocal,
		MustChangePassword: true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// ChangePassword changes a local user's own password and clears the
// must-change flag.
func (s *Service) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if user.IsDirectorySourced() {
		return ErrNotLocalAccount
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	updates := map[string]interface{}{
		"password":             models.HashPassword(newPassword),
		"must_change_password": false,
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	return nil
}

// ResetPassword sets a new password on a local account and forces a change
// at the next login. Admin operation, the old password is not required.
func (s *Service) ResetPassword(userID uint64, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if user.IsDirectorySourced() {
		return ErrNotLocalAccount
	}

	updates := map[string]interface{}{
		"password":             models.HashPassword(newPassword),
		"must_change_password": true,
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	return nil
}

// SetRole replaces a user's role.
func (s *Service) SetRole(userID uint64, role models.Role) error {
	if !role.Valid() {
		return models.ErrUnknownRole
	}

	return s.db.Model(&models.User{}).Where("id = ?", userID).Update("role", role).Error
}

// SetActive activates or deactivates an account. Deactivated AD accounts
// come back at the next sync while still a member of a mapped group.
func (s *Service) SetActive(userID uint64, active bool) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).Update("active", active).Error
}

// GetUserByID retrieves a user by primary key.
func (s *Service) GetUserByID(userID uint64) (*models.User, error) {
	var user models.User

	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	var user models.User

	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// ListUsers lists users with optional filters and pagination.
func (s *Service) ListUsers(authSource models.AuthSource, active *bool, limit, offset int) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	query := s.db.Model(&models.User{})

	if authSource != "" {
		query = query.Where("auth_source = ?", authSource)
	}

	if active != nil {
		query = query.Where("active = ?", *active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	if err := query.Order("username ASC").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}
