// Command addcolumn adds a column to the users table of a KVR database and
// backfills existing rows with a default value. It runs between server
// restarts; the admin API discovers the new column from the live schema, so
// the server itself never needs to know about it.
//
//	addcolumn -db kvr_database.db -name region -default eu -type TEXT
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type options struct {
	dbPath       string
	name         string
	defaultValue string
	colType      string
	notNull      bool
}

func inferType(value string) string {
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return "INTEGER"
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return "REAL"
	}
	return "TEXT"
}

func defaultLiteral(value, colType string) string {
	if colType == "TEXT" {
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	}
	return value
}

func typedValue(value, colType string) any {
	switch colType {
	case "INTEGER":
		n, _ := strconv.ParseInt(value, 10, 64)
		return n
	case "REAL":
		f, _ := strconv.ParseFloat(value, 64)
		return f
	default:
		return value
	}
}

// run validates the options and performs the ALTER + backfill. An already
// existing column is a diagnostic no-op, not an error.
func run(opts options) error {
	if _, err := os.Stat(opts.dbPath); err != nil {
		return fmt.Errorf("database file not found: %s", opts.dbPath)
	}
	if opts.name == "" {
		return errors.New("column name is required")
	}
	if !identPattern.MatchString(opts.name) {
		return errors.New("invalid column name: use letters, digits and underscores, not starting with a digit")
	}
	switch opts.colType {
	case "", "INTEGER", "REAL", "TEXT":
	default:
		return fmt.Errorf("invalid column type %q: choose INTEGER, REAL or TEXT", opts.colType)
	}

	resolvedType := opts.colType
	if resolvedType == "" {
		resolvedType = inferType(opts.defaultValue)
	}
	resolvedDefault := opts.defaultValue
	if resolvedDefault == "" && resolvedType != "TEXT" {
		resolvedDefault = "0"
	}

	db, err := gorm.Open(sqlite.Open(opts.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if !db.Migrator().HasTable("users") {
		return errors.New("no 'users' table found in the database")
	}
	if db.Migrator().HasColumn("users", opts.name) {
		fmt.Printf("Column '%s' already exists in users table.\n", opts.name)
		return nil
	}

	nullable := ""
	if opts.notNull {
		nullable = " NOT NULL"
	}
	alter := fmt.Sprintf("ALTER TABLE users ADD COLUMN %s %s%s DEFAULT %s",
		opts.name, resolvedType, nullable, defaultLiteral(resolvedDefault, resolvedType))
	if err := db.Exec(alter).Error; err != nil {
		return fmt.Errorf("failed to add column: %w", err)
	}

	// Rows that predate the column keep NULL under some sqlite versions;
	// backfill them with the typed default.
	backfill := fmt.Sprintf("UPDATE users SET %s = ? WHERE %s IS NULL", opts.name, opts.name)
	if err := db.Exec(backfill, typedValue(resolvedDefault, resolvedType)).Error; err != nil {
		return fmt.Errorf("failed to backfill existing rows: %w", err)
	}

	fmt.Printf("Added column '%s' (%s) with default %q to users table.\n", opts.name, resolvedType, resolvedDefault)
	return nil
}

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE", "kvr_database.db"), "path to the sqlite database")
	name := flag.String("name", "", "column name to add (identifier)")
	defaultValue := flag.String("default", "", "default value to initialize existing rows with")
	colType := flag.String("type", "", "optional column type: INTEGER, REAL or TEXT (inferred by default)")
	notNull := flag.Bool("not-null", false, "make the column NOT NULL (requires a default)")
	flag.Parse()

	opts := options{
		dbPath:       *dbPath,
		name:         *name,
		defaultValue: *defaultValue,
		colType:      *colType,
		notNull:      *notNull,
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
