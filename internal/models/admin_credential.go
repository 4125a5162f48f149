package models

// AdminCredentialID is the fixed primary key of the single credential row.
const AdminCredentialID uint = 1

// AdminCredential holds the bcrypt hash of the admin console password.
// At most one row exists; absence means the password was never set.
type AdminCredential struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	PasswordHash string `gorm:"not null" json:"-"`
}

func (AdminCredential) TableName() string {
	return "admin"
}
