package repositories

import (
	"errors"

	"kvr/userdb/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNoCredential  = errors.New("admin password has not been set")
	ErrWrongPassword = errors.New("wrong admin password")
)

// AdminRepository manages the single admin credential row.
type AdminRepository struct {
	DB *gorm.DB
}

func (r *AdminRepository) HasPassword() (bool, error) {
	var count int64
	err := r.DB.Model(&models.AdminCredential{}).
		Where("id = ?", models.AdminCredentialID).
		Count(&count).Error
	return count > 0, err
}

// SetPassword hashes and stores the password, creating or replacing the
// credential row. Authorization is the handler's job; once set, the
// credential never goes back to unset.
func (r *AdminRepository) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	credential := models.AdminCredential{
		ID:           models.AdminCredentialID,
		PasswordHash: string(hash),
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash"}),
	}).Create(&credential).Error
}

// CheckPassword verifies a password against the stored hash. bcrypt's
// comparison is constant-time.
func (r *AdminRepository) CheckPassword(password string) error {
	var credential models.AdminCredential
	err := r.DB.First(&credential, "id = ?", models.AdminCredentialID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoCredential
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)) != nil {
		return ErrWrongPassword
	}
	return nil
}
