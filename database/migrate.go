package database

import (
	"abacus_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate applies the schema for every model. Order matters only for
// readability; gorm resolves the foreign keys.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Brand{},
		&models.BrandUser{},
		&models.Calendar{},
		&models.CalendarScope{},
		&models.Task{},
		&models.Comment{},
		&models.Attachment{},
		&models.Notification{},
		&models.ActivityLog{},
	)
}
