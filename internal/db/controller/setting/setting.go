// Package setting provides access to application settings stored in the
// database, including the outcome of the most recent AD synchronization.
package setting

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"

	// LastSyncName is the setting holding the most recent sync outcome.
	LastSyncName = "last_ad_sync"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when a setting name is empty.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// SyncStatus is the persisted outcome of one synchronization run.
type SyncStatus struct {
	At      time.Time `json:"at"`
	Success bool      `json:"success"`
	Summary string    `json:"summary"`
	Actor   string    `json:"actor"`
}

// Get retrieves a setting by its name.
func Get(db *gorm.DB, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting

	result := db.Where(nameQueryPattern, name).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, result.Error
	}

	return &setting, nil
}

// Set stores a setting value, overwriting any previous value.
func Set(db *gorm.DB, name string, value []byte) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	setting := models.Setting{Name: name, Value: value}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
}

// SetLastSync records the outcome of a synchronization run.
func SetLastSync(db *gorm.DB, status SyncStatus) error {
	value, err := json.Marshal(status)
	if err != nil {
		return err
	}

	return Set(db, LastSyncName, value)
}

// LastSync returns the most recent synchronization outcome, or
// ErrSettingNotFound when no sync has run yet.
func LastSync(db *gorm.DB) (*SyncStatus, error) {
	setting, err := Get(db, LastSyncName)
	if err != nil {
		return nil, err
	}

	var status SyncStatus
	if err := json.Unmarshal(setting.Value, &status); err != nil {
		return nil, err
	}

	return &status, nil
}
