package database

import (
	"fmt"

	"github.com/shockonlant/LunaTrack/internal/models"
	"github.com/shockonlant/LunaTrack/internal/storage"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.AuditLog{},
		&storage.Document{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
