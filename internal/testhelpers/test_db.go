package testhelpers

import (
	"fmt"
	"testing"

	"kvr/userdb/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB creates an isolated in-memory SQLite database for tests, with
// the users and admin tables migrated and unique-constraint errors
// translated to gorm.ErrDuplicatedKey like the real connection.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(fmt.Sprintf("failed to open test database: %v", err))
	}
	if err := database.Migrate(db); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}
	return db
}

// AddColumn bolts an extra column onto the users table, simulating the
// out-of-band schema-mutation tool.
func AddColumn(t *testing.T, db *gorm.DB, name, declaredType, defaultLiteral string) {
	t.Helper()
	stmt := fmt.Sprintf("ALTER TABLE users ADD COLUMN %s %s DEFAULT %s", name, declaredType, defaultLiteral)
	if err := db.Exec(stmt).Error; err != nil {
		panic(fmt.Sprintf("failed to add column %s: %v", name, err))
	}
}
