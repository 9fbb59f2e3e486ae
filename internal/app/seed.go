package app

import (
	"errors"

	"gorm.io/gorm"

	"abacus_backend/internal/auth"
	"abacus_backend/internal/config"
	"abacus_backend/internal/logger"
	"abacus_backend/internal/models"
)

// SeedFirstAdmin creates the bootstrap super admin when no account with
// that role exists yet. Without it a fresh install has nobody who can
// create users or change roles.
func SeedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
		logger.Warn("first admin credentials not configured, skipping seed")
		return nil
	}

	var existing models.User
	err := db.Where("role = ?", models.UserRoleSuperAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.FirstAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        cfg.FirstAdminEmail,
		PasswordHash: hash,
		FirstName:    "Super",
		LastName:     "Admin",
		Role:         models.UserRoleSuperAdmin,
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("seeded first super admin", "email", cfg.FirstAdminEmail)
	return nil
}
