// Package activity records who did what in the application. Every
// security-relevant action (logins, sync runs, user and master data
// changes) lands here; the admin log screen reads it back out.
package activity

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
)

// Filter narrows a log query. Zero values mean "no restriction".
type Filter struct {
	Category    string
	Status      string
	PerformedBy string
	Since       time.Time
	Until       time.Time
}

// Service persists and queries activity log entries.
type Service struct {
	db *gorm.DB
}

// NewService creates the activity log service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Log records one entry. Logging is best-effort: a write failure is
// logged and swallowed so it can never fail the action being recorded.
func (s *Service) Log(action, details, performedBy, category, ipAddress, status string) {
	entry := models.ActivityLog{
		Timestamp:   time.Now(),
		Action:      action,
		Details:     details,
		PerformedBy: performedBy,
		Category:    category,
		IPAddress:   ipAddress,
		Status:      status,
	}

	if err := s.db.Create(&entry).Error; err != nil {
		log.Error().Err(err).Str("action", action).Msg("failed to write activity log entry")
	}
}

// Success records a successful action.
func (s *Service) Success(action, details, performedBy, category, ipAddress string) {
	s.Log(action, details, performedBy, category, ipAddress, models.ActivityStatusSuccess)
}

// Failure records a failed action.
func (s *Service) Failure(action, details, performedBy, category, ipAddress string) {
	s.Log(action, details, performedBy, category, ipAddress, models.ActivityStatusFailed)
}

// List returns matching entries, newest first, capped at limit.
func (s *Service) List(filter Filter, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}

	q := s.db.Model(&models.ActivityLog{})

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if filter.PerformedBy != "" {
		q = q.Where("performed_by = ?", filter.PerformedBy)
	}

	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}

	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	var entries []models.ActivityLog

	if err := q.Order("timestamp DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query activity log")
	}

	return entries, nil
}

// Clear removes every entry and records who cleared it. The clear action
// itself survives as the first entry of the fresh log.
func (s *Service) Clear(performedBy, ipAddress string) error {
	if err := s.db.Where("1 = 1").Delete(&models.ActivityLog{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear activity log")
	}

	s.Success("Clear Activity Log", "All activity log entries removed", performedBy, models.ActivityCategorySystem, ipAddress)

	return nil
}
