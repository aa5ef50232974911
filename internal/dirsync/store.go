package dirsync

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
)

// MappingSource provides the active AD group mappings. Read-only to the
// sync; mappings are maintained through the admin screens.
type MappingSource interface {
	ListActiveMappings() ([]models.ADGroupMapping, error)
}

// UserStore is the local user persistence contract the reconciler applies
// its desired state against. Every method fails with a descriptive error
// rather than panicking, so per-user failures stay soft.
type UserStore interface {
	// FindBySamAccountName returns the user with the given directory
	// identity, or nil when no such user exists.
	FindBySamAccountName(sam string) (*models.User, error)
	// Create persists a new user record.
	Create(user *models.User) error
	// Update persists changed attributes of an existing user record.
	Update(user *models.User) error
	// SetRole replaces the user's role assignment.
	SetRole(user *models.User, role models.Role) error
	// ListActiveDirectoryUsers returns every active, directory-sourced user.
	ListActiveDirectoryUsers() ([]models.User, error)
}

// GormStore implements MappingSource and UserStore on a gorm database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ListActiveMappings returns all active AD group mappings in primary key
// order. The order is stable within one run, which keeps the role priority
// resolution well-defined.
func (s *GormStore) ListActiveMappings() ([]models.ADGroupMapping, error) {
	var mappings []models.ADGroupMapping

	if err := s.db.Where("active = ?", true).Order("id ASC").Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("failed to load AD group mappings: %w", err)
	}

	return mappings, nil
}

// FindBySamAccountName looks a user up by directory identity key.
// Directory identities are case-insensitive, so a casing change in AD must
// resolve to the existing account.
func (s *GormStore) FindBySamAccountName(sam string) (*models.User, error) {
	var user models.User

	err := s.db.Where("LOWER(sam_account_name) = ?", strings.ToLower(sam)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil // absence is not a failure here
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user %q: %w", sam, err)
	}

	return &user, nil
}

// Create persists a new user record.
func (s *GormStore) Create(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}

	return nil
}

// Update persists an existing user record.
func (s *GormStore) Update(user *models.User) error {
	if err := s.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user %q: %w", user.Username, err)
	}

	return nil
}

// SetRole replaces the user's single role assignment.
func (s *GormStore) SetRole(user *models.User, role models.Role) error {
	if err := s.db.Model(user).Update("role", role).Error; err != nil {
		return fmt.Errorf("failed to set role for user %q: %w", user.Username, err)
	}

	user.Role = role

	return nil
}

// ListActiveDirectoryUsers returns every active, directory-sourced user.
func (s *GormStore) ListActiveDirectoryUsers() ([]models.User, error) {
	var users []models.User

	err := s.db.
		Where("auth_source = ? AND active = ?", models.AuthSourceActiveDirectory, true).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load directory users: %w", err)
	}

	return users, nil
}
