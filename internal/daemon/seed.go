package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
)

// seed creates the bootstrap SuperAdmin account and the default lookup
// data on an empty database.
func seed(_ *config.Config, db *gorm.DB) {
	var count int64

	db.Model(&models.User{}).Count(&count)

	if count == 0 {
		db.Create(
			&models.User{
				Active:             true,
				Username:           "admin",
				DisplayName:        "Administrator",
				Password:           models.HashPassword("changeme"),
				Role:               models.RoleSuperAdmin,
				AuthSource:         models.AuthSourceLocal,
				MustChangePassword: true,
			},
		)

		log.Warn().Msg("created bootstrap admin account, change its password at first login")
	}

	seedStatuses(db)
	seedCategories(db)
	seedFoundBySources(db)
}

func seedStatuses(db *gorm.DB) {
	var count int64

	db.Model(&models.ItemStatus{}).Count(&count)
	if count > 0 {
		return
	}

	for _, name := range []string{"In Storage", "Claimed", "Donated", "Disposed"} {
		db.Create(&models.ItemStatus{Name: name, Active: true})
	}
}

func seedCategories(db *gorm.DB) {
	var count int64

	db.Model(&models.ItemCategory{}).Count(&count)
	if count > 0 {
		return
	}

	for _, name := range []string{"Electronics", "Clothing", "Bags", "Keys", "Documents", "Other"} {
		db.Create(&models.ItemCategory{Name: name, Active: true})
	}
}

func seedFoundBySources(db *gorm.DB) {
	var count int64

	db.Model(&models.FoundBySource{}).Count(&count)
	if count > 0 {
		return
	}

	for _, name := range []string{"Driver", "Passenger", "Cleaning Crew", "Other"} {
		db.Create(&models.FoundBySource{Name: name, Active: true})
	}
}
