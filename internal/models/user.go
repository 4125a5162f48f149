package models

// User represents a KingdomVR player account. The internal id is never
// serialized; username and pin are both unique lookup keys.
type User struct {
	ID          uint    `gorm:"primaryKey" json:"-"`
	Username    string  `gorm:"unique;not null" json:"username"`
	Pin         string  `gorm:"unique;not null" json:"pin"`
	Kvrcoin     float64 `gorm:"not null;default:0" json:"kvrcoin"`
	ChessPoints float64 `gorm:"not null;default:0" json:"chess_points"`
}

// TableName pins the table name so out-of-band ALTER TABLE statements and
// the live-schema admin path always target "users".
func (User) TableName() string {
	return "users"
}

// MutableFields is the update whitelist for the public API. Username is
// immutable and id is internal; anything else in a PATCH payload is dropped.
var MutableFields = map[string]bool{
	"pin":          true,
	"kvrcoin":      true,
	"chess_points": true,
}
