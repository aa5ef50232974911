package models

import "time"

// FoundItem is the primary tracking record for a lost-and-found item.
// Uses an auto-increment integer primary key for readable tracking numbers
// in URLs and efficient indexing.
type FoundItem struct {
	// TrackingID is the public tracking number of the item.
	TrackingID uint `gorm:"primaryKey"`
	// DateFound is the date the item was found. Never in the future.
	DateFound time.Time `gorm:"not null"`
	// CategoryID references the item category master data.
	CategoryID uint         `gorm:"not null"`
	Category   ItemCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	// Description is a free-text description of the item.
	Description string `gorm:"size:500"`
	// LocationFound is where the item was found.
	LocationFound string `gorm:"size:300;not null"`
	// RouteID optionally references the transit route.
	RouteID *uint
	Route   *Route `gorm:"foreignKey:RouteID"`
	// VehicleID optionally references the vehicle.
	VehicleID *uint
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID"`
	// StorageLocationID optionally references where the item is held.
	StorageLocationID *uint
	StorageLocation   *StorageLocation `gorm:"foreignKey:StorageLocationID"`
	// StatusID references the current lifecycle status.
	StatusID uint       `gorm:"not null"`
	Status   ItemStatus `gorm:"foreignKey:StatusID;constraint:OnDelete:RESTRICT"`
	// StatusDate is when the current status was set.
	StatusDate *time.Time
	// FoundByID optionally references who turned the item in.
	FoundByID *uint
	FoundBy   *FoundBySource `gorm:"foreignKey:FoundByID"`
	// PhotoPath is an opaque reference to a stored photo.
	PhotoPath string `gorm:"size:500"`
	// AttachmentPath is an opaque reference to a stored attachment.
	AttachmentPath string `gorm:"size:500"`
	// ClaimedBy records who claimed the item, free text.
	ClaimedBy string `gorm:"size:200"`
	// CreatedBy is the username of the recording user. Populated from the
	// session, never user-editable.
	CreatedBy string `gorm:"size:256"`
	// Notes is free-text handling notes.
	Notes string `gorm:"size:1000"`
	// CreatedAt is the timestamp when the record was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the record was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the FoundItem model.
// This overrides GORM's default pluralized table naming.
func (FoundItem) TableName() string {
	return "found_items"
}

// DaysSinceFound is calculated at read time, never stored.
func (i *FoundItem) DaysSinceFound() int {
	return DaysSinceFoundAt(i.DateFound, time.Now())
}

// DaysSinceFoundAt returns the whole days between the found date and now,
// comparing calendar dates in UTC.
func DaysSinceFoundAt(dateFound, now time.Time) int {
	found := time.Date(dateFound.Year(), dateFound.Month(), dateFound.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return int(today.Sub(found).Hours() / 24) //nolint:mnd
}
