package main

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kvr/userdb/internal/models"
)

// seedDatabase creates a sqlite file with a migrated users table and two rows,
// returning its path.
func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kvr.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open seed database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate seed database: %v", err)
	}
	for _, u := range []models.User{
		{Username: "alice", Pin: "1234"},
		{Username: "bob", Pin: "5678"},
	} {
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("failed to seed user %s: %v", u.Username, err)
		}
	}
	return path
}

func openDatabase(t *testing.T, path string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	return db
}

func TestRunAddsColumnAndBackfills(t *testing.T) {
	path := seedDatabase(t)

	err := run(options{dbPath: path, name: "region", defaultValue: "eu", colType: "TEXT"})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	db := openDatabase(t, path)
	if !db.Migrator().HasColumn("users", "region") {
		t.Fatalf("expected region column to exist")
	}

	var regions []string
	if err := db.Table("users").Order("id").Pluck("region", &regions).Error; err != nil {
		t.Fatalf("failed to read backfilled values: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(regions))
	}
	for _, r := range regions {
		if r != "eu" {
			t.Fatalf("expected backfilled value 'eu', got %q", r)
		}
	}
}

func TestRunInfersNumericType(t *testing.T) {
	path := seedDatabase(t)

	if err := run(options{dbPath: path, name: "wins", defaultValue: "3"}); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	db := openDatabase(t, path)
	var wins []int64
	if err := db.Table("users").Pluck("wins", &wins).Error; err != nil {
		t.Fatalf("failed to read backfilled values: %v", err)
	}
	for _, w := range wins {
		if w != 3 {
			t.Fatalf("expected backfilled value 3, got %d", w)
		}
	}
}

func TestRunExistingColumnIsNoOp(t *testing.T) {
	path := seedDatabase(t)

	opts := options{dbPath: path, name: "region", defaultValue: "eu", colType: "TEXT"}
	if err := run(opts); err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	if err := run(opts); err != nil {
		t.Fatalf("second run should be a no-op success, got: %v", err)
	}

	// Existing values survive the repeated invocation.
	db := openDatabase(t, path)
	if err := db.Table("users").Where("username = ?", "alice").
		Update("region", "us").Error; err != nil {
		t.Fatalf("failed to update row: %v", err)
	}
	if err := run(opts); err != nil {
		t.Fatalf("third run returned error: %v", err)
	}
	var regions []string
	if err := db.Table("users").Where("username = ?", "alice").
		Pluck("region", &regions).Error; err != nil {
		t.Fatalf("failed to read row: %v", err)
	}
	if len(regions) != 1 || regions[0] != "us" {
		t.Fatalf("expected existing value 'us' to be untouched, got %v", regions)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	path := seedDatabase(t)

	t.Run("missing database file", func(t *testing.T) {
		err := run(options{dbPath: filepath.Join(t.TempDir(), "absent.db"), name: "region"})
		if err == nil {
			t.Fatalf("expected error for missing database file")
		}
	})

	t.Run("missing column name", func(t *testing.T) {
		if err := run(options{dbPath: path}); err == nil {
			t.Fatalf("expected error for missing column name")
		}
	})

	t.Run("invalid identifier", func(t *testing.T) {
		err := run(options{dbPath: path, name: "drop table", defaultValue: "x"})
		if err == nil {
			t.Fatalf("expected error for invalid identifier")
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		err := run(options{dbPath: path, name: "region", colType: "BLOB"})
		if err == nil {
			t.Fatalf("expected error for unsupported column type")
		}
	})

	t.Run("missing users table", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty.db")
		db, err := gorm.Open(sqlite.Open(empty), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			t.Fatalf("failed to create empty database: %v", err)
		}
		if err := db.Exec("CREATE TABLE other (id INTEGER)").Error; err != nil {
			t.Fatalf("failed to create table: %v", err)
		}
		if err := run(options{dbPath: empty, name: "region", defaultValue: "eu"}); err == nil {
			t.Fatalf("expected error when users table is absent")
		}
	})
}

func TestInferType(t *testing.T) {
	cases := []struct {
		value, want string
	}{
		{"42", "INTEGER"},
		{"-7", "INTEGER"},
		{"3.14", "REAL"},
		{"eu-west", "TEXT"},
		{"", "TEXT"},
	}
	for _, c := range cases {
		if got := inferType(c.value); got != c.want {
			t.Fatalf("inferType(%q) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestDefaultLiteral(t *testing.T) {
	if got := defaultLiteral("0", "INTEGER"); got != "0" {
		t.Fatalf("numeric literal should be unquoted, got %q", got)
	}
	if got := defaultLiteral("eu", "TEXT"); got != "'eu'" {
		t.Fatalf("text literal should be quoted, got %q", got)
	}
	if got := defaultLiteral("o'brien", "TEXT"); got != "'o''brien'" {
		t.Fatalf("quotes should be escaped, got %q", got)
	}
}

func TestTypedValue(t *testing.T) {
	if got := typedValue("42", "INTEGER"); got != int64(42) {
		t.Fatalf("expected int64 42, got %v", got)
	}
	if got := typedValue("3.5", "REAL"); got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
	if got := typedValue("eu", "TEXT"); got != "eu" {
		t.Fatalf("expected eu, got %v", got)
	}
}

func TestIdentPattern(t *testing.T) {
	for _, valid := range []string{"region", "chess_points", "_x", "a1"} {
		if !identPattern.MatchString(valid) {
			t.Fatalf("expected %q to be a valid identifier", valid)
		}
	}
	for _, invalid := range []string{"1abc", "drop table", "a-b", "", "x;"} {
		if identPattern.MatchString(invalid) {
			t.Fatalf("expected %q to be rejected", invalid)
		}
	}
}
