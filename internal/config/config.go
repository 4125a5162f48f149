package config

import (
	"errors"
	"fmt"
	"os"
)

// Config carries everything the servers need from the environment. It is
// loaded once in main and passed by reference into handlers and middleware;
// nothing reads the environment after startup.
type Config struct {
	DatabaseDriver string // "sqlite" or "postgres"
	DatabasePath   string // sqlite file path
	PostgresDSN    string
	APIKey         string // shared secret for the public API; may be empty
	Port           string
	AdminPort      string
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		DatabaseDriver: getEnvOrDefault("DB_DRIVER", "sqlite"),
		DatabasePath:   getEnvOrDefault("DATABASE", "kvr_database.db"),
		PostgresDSN:    postgresDSN(),
		APIKey:         os.Getenv("API_KEY"),
		Port:           getEnvOrDefault("PORT", "5000"),
		AdminPort:      getEnvOrDefault("ADMIN_PORT", "5001"),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.DatabaseDriver != "sqlite" && config.DatabaseDriver != "postgres" {
		return errors.New("unsupported database driver: " + config.DatabaseDriver + ". Currently supported: sqlite, postgres")
	}
	return nil
}

func postgresDSN() string {
	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "postgres")
	dbname := getEnvOrDefault("POSTGRES_DB", "postgres")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	sslmode := getEnvOrDefault("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
