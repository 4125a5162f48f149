package database

import (
	"fmt"

	"kvr/userdb/internal/config"
	"kvr/userdb/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the configured database and ensures the schema exists.
// TranslateError maps driver-level unique-constraint failures to
// gorm.ErrDuplicatedKey so the repositories can surface conflicts uniformly.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN)
	default:
		dialector = sqlite.Open(cfg.DatabasePath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the users and admin tables if absent. Idempotent; adding
// further columns is the job of cmd/addcolumn, never of the server.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.AdminCredential{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
