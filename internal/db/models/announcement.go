package models

import "time"

// AnnouncementTargetAll targets every role.
const AnnouncementTargetAll = "All"

// MaxPopupShows is how often an announcement popup is shown to a user
// before it only remains in the inbox.
const MaxPopupShows = 3

// Announcement is a message created by a SuperAdmin for one role or all.
// Announcements appear as popups after login and persist in the inbox.
type Announcement struct {
	// ID is the unique identifier for the announcement.
	ID uint `gorm:"primaryKey"`
	// Title is the announcement headline.
	Title string `gorm:"size:200;not null"`
	// Message is the announcement body.
	Message string `gorm:"size:4000;not null"`
	// TargetRole is a role name or AnnouncementTargetAll.
	TargetRole string `gorm:"size:50;not null;default:'All'"`
	// CreatedBy is the username of the author.
	CreatedBy string `gorm:"size:256;not null"`
	// CreatedAt is when the announcement was published.
	CreatedAt time.Time
	// ExpiresAt is an optional expiry. Nil means the announcement never expires.
	ExpiresAt *time.Time
	// Active indicates the announcement is visible.
	Active bool
}

// TableName overrides GORM's default pluralized table naming.
func (Announcement) TableName() string {
	return "announcements"
}

// Expired reports whether the announcement has passed its expiry.
func (a *Announcement) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

// TargetsRole reports whether the announcement is addressed to the given role.
func (a *Announcement) TargetsRole(role Role) bool {
	return a.TargetRole == AnnouncementTargetAll || a.TargetRole == string(role)
}

// AnnouncementRead tracks per-user read and dismiss state for an announcement.
type AnnouncementRead struct {
	// ID is the unique identifier for the read-state row.
	ID uint64 `gorm:"primaryKey"`
	// AnnouncementID references the announcement.
	AnnouncementID uint         `gorm:"not null;uniqueIndex:idx_announcement_user"`
	Announcement   Announcement `gorm:"foreignKey:AnnouncementID;constraint:OnDelete:CASCADE"`
	// UserID references the reading user.
	UserID uint64 `gorm:"not null;uniqueIndex:idx_announcement_user"`
	// PopupShownCount is how often the popup was displayed (stops at MaxPopupShows).
	PopupShownCount int
	// FirstReadAt is when the user first saw the announcement.
	FirstReadAt time.Time
	// DismissedAt is when the user explicitly dismissed it. Nil if not yet dismissed.
	DismissedAt *time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (AnnouncementRead) TableName() string {
	return "announcement_reads"
}
