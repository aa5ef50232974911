package models

import "time"

// Activity log categories used for filtering.
const (
	// ActivityCategoryAuth covers login, logout and credential events.
	ActivityCategoryAuth = "Auth"
	// ActivityCategoryADSync covers directory synchronization runs.
	ActivityCategoryADSync = "ADSync"
	// ActivityCategoryUserManagement covers account and role administration.
	ActivityCategoryUserManagement = "UserManagement"
	// ActivityCategoryMasterData covers lookup table administration.
	ActivityCategoryMasterData = "MasterData"
	// ActivityCategoryItems covers found item intake and lifecycle changes.
	ActivityCategoryItems = "Items"
	// ActivityCategoryAnnouncements covers announcement administration.
	ActivityCategoryAnnouncements = "Announcements"
	// ActivityCategorySystem covers everything else.
	ActivityCategorySystem = "System"
)

// Activity log statuses.
const (
	// ActivityStatusSuccess marks a successful action.
	ActivityStatusSuccess = "Success"
	// ActivityStatusFailed marks a failed action.
	ActivityStatusFailed = "Failed"
)

// ActivityLog stores all application activity for the audit trail.
// SuperAdmin can view and clear logs; other roles can only view.
type ActivityLog struct {
	// ID is the unique identifier for the log entry.
	ID uint64 `gorm:"primaryKey"`
	// Timestamp is when the action happened.
	Timestamp time.Time `gorm:"not null;index"`
	// Action is the short action name, e.g. "Login", "AD Sync", "Create Item".
	Action string `gorm:"size:100;not null"`
	// Details describes what happened.
	Details string `gorm:"size:2000;not null"`
	// PerformedBy is the username of the person who performed the action.
	PerformedBy string `gorm:"size:256;not null"`
	// Category is one of the ActivityCategory constants.
	Category string `gorm:"size:50;not null;index"`
	// IPAddress is the client address for security auditing.
	IPAddress string `gorm:"size:50"`
	// Status is Success or Failed.
	Status string `gorm:"size:20;default:'Success'"`
}

// TableName specifies the database table name for the ActivityLog model.
// This overrides GORM's default pluralized table naming.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
