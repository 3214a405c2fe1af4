package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type QuoteStatus string

const (
	QuoteSubmitted QuoteStatus = "submitted"
	QuoteSelected  QuoteStatus = "selected"
	QuoteRejected  QuoteStatus = "rejected"
)

// Quote is one contractor's priced bid against a project.
type Quote struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	ProjectID    snowflake.ID `gorm:"not null;index" json:"project_id"`
	ContractorID snowflake.ID `gorm:"not null;index" json:"contractor_id"`
	Price        float64      `gorm:"not null" json:"price"`
	Description  string       `json:"description"`
	PDFURL       string       `gorm:"column:pdf_url" json:"pdf_url,omitempty"`
	Status       QuoteStatus  `gorm:"not null;default:submitted" json:"status"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Quote) TableName() string {
	return "contractor_quotes"
}
