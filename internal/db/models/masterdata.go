package models

import "time"

// Master data lookup tables for item intake. Each is a flat name list
// maintained by administrators; inactive entries stay referenced by old
// items but disappear from intake forms.

// ItemCategory classifies found items (e.g. "Phone", "Wallet", "Umbrella").
type ItemCategory struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:200;not null"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (ItemCategory) TableName() string {
	return "item_categories"
}

// Route is the transit route an item was found on.
type Route struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:200;not null"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (Route) TableName() string {
	return "routes"
}

// Vehicle is the vehicle an item was found in.
type Vehicle struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:200;not null"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (Vehicle) TableName() string {
	return "vehicles"
}

// StorageLocation is where a found item is physically held.
type StorageLocation struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:200;not null"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (StorageLocation) TableName() string {
	return "storage_locations"
}

// ItemStatus is a lifecycle state of a found item (e.g. "In Storage",
// "Claimed", "Donated", "Disposed").
type ItemStatus struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:200;not null"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (ItemStatus) TableName() string {
	return "item_statuses"
}

// FoundBySource identifies who turned an item in (e.g. "Driver", "Passenger").
type FoundBySource struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:200;not null"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (FoundBySource) TableName() string {
	return "found_by_sources"
}
