package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ABEL-1010/Inventory-Management-System/internal/config"
	"github.com/ABEL-1010/Inventory-Management-System/internal/models"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"gorm.io/gorm"
)

// ErrAdminExists is returned by SeedAdmin when an admin account is already present.
var ErrAdminExists = errors.New("admin user already exists")

// SeedAdmin creates the first admin account from cfg.
func SeedAdmin(db *gorm.DB, cfg config.AdminConfig, bcryptCost int) (*models.User, error) {
	if cfg.Password == "" {
		return nil, fmt.Errorf("admin.password is required (set IMS_ADMIN_PASSWORD)")
	}
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" {
		return nil, fmt.Errorf("admin.email is required")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil, ErrAdminExists
	}

	hash, err := util.HashPassword(cfg.Password, bcryptCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         cfg.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return &user, nil
}
