package models

import "time"

// ADGroupMapping associates one Active Directory group with one application
// role. The synchronization resolves the members of every active mapping and
// assigns each member the mapped role; when an identity appears in several
// mapped groups, the role with the highest priority wins.
// Mappings are maintained by administrators and are read-only to the sync.
type ADGroupMapping struct {
	// ID is the unique identifier for the mapping.
	ID uint `gorm:"primaryKey"`
	// GroupName is the AD group name (sAMAccountName or CN), unique per mapping.
	GroupName string `gorm:"unique;size:256;not null"`
	// MappedRole is the application role members of this group receive.
	MappedRole Role `gorm:"type:varchar(50);not null;default:'User'"`
	// Active indicates whether this mapping participates in synchronization.
	// Inactive mappings are ignored by the sync. No column default: an
	// explicit false on insert must be persisted as false.
	Active bool
	// CreatedAt is the timestamp when the mapping was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the mapping was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the ADGroupMapping model.
// This overrides GORM's default pluralized table naming.
func (ADGroupMapping) TableName() string {
	return "ad_group_mappings"
}
