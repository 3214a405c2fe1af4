package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is an authentication identity. The locale column is protected by
// row-level policies for request-scoped credentials, which is why the
// repository reads through the elevated handle.
type User struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"not null;uniqueIndex" json:"email"`
	Name      string       `gorm:"not null" json:"name"`
	UserType  string       `gorm:"not null;default:customer" json:"user_type"`
	Locale    string       `json:"locale"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
