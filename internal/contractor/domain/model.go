package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ContractorStatus string

const (
	ContractorActive    ContractorStatus = "active"
	ContractorInactive  ContractorStatus = "inactive"
	ContractorSuspended ContractorStatus = "suspended"
)

// Contractor is a business entity bidding on projects. Exactly one
// contractor row exists per authentication identity.
type Contractor struct {
	ID          snowflake.ID                `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID                `gorm:"not null;uniqueIndex" json:"user_id"`
	CompanyName string                      `gorm:"not null" json:"company_name"`
	ContactName string                      `gorm:"not null" json:"contact_name"`
	Email       string                      `gorm:"not null" json:"email"`
	Phone       string                      `json:"phone"`
	Specialties datatypes.JSONSlice[string] `json:"specialties"`
	Status      ContractorStatus            `gorm:"not null;default:active" json:"status"`
	CreatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Contractor) TableName() string {
	return "contractors"
}
