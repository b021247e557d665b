package database

import (
	"fmt"

	"gorm.io/gorm"

	"portal_backend/internal/logger"
	"portal_backend/internal/models"
)

// Models lists every table owned by the application, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Organization{},
		&models.User{},
		&models.RefreshToken{},
		&models.Profile{},
		&models.Job{},
		&models.ApplicationFormField{},
		&models.Application{},
		&models.Category{},
		&models.Transaction{},
		&models.Hewan{},
		&models.Product{},
		&models.ItikafEvent{},
		&models.ItikafParticipant{},
		&models.Upload{},
	}
}

// AutoMigrate creates or updates the schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("AutoMigrate completed", "tables", len(Models()))
	return nil
}
