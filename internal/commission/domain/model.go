package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type CommissionStatus string

const (
	CommissionPending  CommissionStatus = "pending"
	CommissionReceived CommissionStatus = "received"
)

// CommissionRecord tracks the marketplace's cut of a selected quote.
// At most one record exists per quote request; the unique index backs
// the idempotent check-then-insert in the repository.
type CommissionRecord struct {
	ID               snowflake.ID     `gorm:"primaryKey" json:"id"`
	QuoteRequestID   snowflake.ID     `gorm:"not null;uniqueIndex:ux_commission_tracking_quote_request" json:"quote_request_id"`
	ContractorID     snowflake.ID     `gorm:"not null;index" json:"contractor_id"`
	ContractorName   string           `json:"contractor_name"`
	ProjectTitle     string           `json:"project_title"`
	QuoteAmount      float64          `gorm:"not null" json:"quote_amount"`
	CommissionRate   float64          `gorm:"not null" json:"commission_rate"`
	CommissionAmount float64          `gorm:"not null" json:"commission_amount"`
	Status           CommissionStatus `gorm:"not null;default:pending" json:"status"`
	StartedAt        time.Time        `gorm:"not null" json:"started_at"`
	MarkedManually   bool             `gorm:"not null;default:false" json:"marked_manually"`

	PaymentReceivedAt *time.Time `json:"payment_received_at,omitempty"`
	Notes             *string    `json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CommissionRecord) TableName() string {
	return "commission_tracking"
}
