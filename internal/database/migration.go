package database

import (
	"fmt"

	"github.com/ABEL-1010/Inventory-Management-System/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema. Categories go first so the
// items foreign key can reference them.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Item{},
		&models.Sale{},
		&models.User{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
