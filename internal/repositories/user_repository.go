package repositories

import (
	"errors"

	"kvr/userdb/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrDuplicate    = errors.New("username or pin already exists")
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) CreateUser(user *models.User) error {
	err := r.DB.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (r *UserRepository) GetUserByPin(pin string) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, "pin = ?", pin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

// UpdateUser applies an already-filtered column map to one user. Callers are
// responsible for whitelisting keys; this method only guards the row lookup
// and the pin uniqueness constraint.
func (r *UserRepository) UpdateUser(username string, updates map[string]any) (*models.User, error) {
	result := r.DB.Model(&models.User{}).Where("username = ?", username).Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.GetUserByUsername(username)
}

func (r *UserRepository) DeleteUser(username string) error {
	result := r.DB.Delete(&models.User{}, "username = ?", username)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// LeaderboardEntry is one row of the chess leaderboard.
type LeaderboardEntry struct {
	Username    string  `json:"username"`
	ChessPoints float64 `json:"chess_points"`
}

// Leaderboard returns users ordered by chess_points. Order must be "asc" or
// "desc" (handlers sanitize user input before calling); limit <= 0 means no
// cap.
func (r *UserRepository) Leaderboard(order string, limit int) ([]LeaderboardEntry, error) {
	entries := []LeaderboardEntry{}
	query := r.DB.Model(&models.User{}).
		Select("username", "chess_points").
		Order("chess_points " + order)
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}
