package handlers

import (
	"kvr/userdb/internal/models"
	"kvr/userdb/internal/repositories"
)

// UserRepository captures the persistence operations required by handlers.
// The map-based methods back the schema-generic admin path; the typed
// methods back the public path with its fixed column set.
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetUserByPin(pin string) (*models.User, error)
	UpdateUser(username string, updates map[string]any) (*models.User, error)
	DeleteUser(username string) error
	Leaderboard(order string, limit int) ([]repositories.LeaderboardEntry, error)

	Columns() ([]repositories.Column, error)
	ListAll() ([]map[string]any, error)
	GetRow(username string) (map[string]any, error)
	CreateFromMap(values map[string]any) error
	UpdateFromMap(username string, updates map[string]any) error
}

// AdminRepository captures the credential operations required by handlers.
type AdminRepository interface {
	HasPassword() (bool, error)
	SetPassword(password string) error
	CheckPassword(password string) error
}
