package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Project is a customer's renovation quote request, the central
// workflow entity.
type Project struct {
	ID           snowflake.ID                `gorm:"primaryKey" json:"id"`
	CustomerID   snowflake.ID                `gorm:"not null;index" json:"customer_id"`
	SpaceType    string                      `gorm:"not null" json:"space_type"`
	ProjectTypes datatypes.JSONSlice[string] `gorm:"not null" json:"project_types"`
	Budget       string                      `gorm:"not null" json:"budget"`
	Timeline     string                      `gorm:"not null" json:"timeline"`
	FullAddress  string                      `gorm:"not null" json:"full_address"`
	PostalCode   string                      `json:"postal_code"`
	Description  string                      `json:"description"`

	Status               Status        `gorm:"not null;index;default:pending" json:"status"`
	SelectedContractorID *snowflake.ID `json:"selected_contractor_id,omitempty"`
	SelectedQuoteID      *snowflake.ID `json:"selected_quote_id,omitempty"`
	ProjectStartedAt     *time.Time    `json:"project_started_at,omitempty"`
	ProjectCompletedAt   *time.Time    `json:"project_completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Project) TableName() string {
	return "quote_requests"
}

// HasSelection reports whether both the contractor and the quote
// references required to start the project are present.
func (p *Project) HasSelection() bool {
	return p.SelectedContractorID != nil && *p.SelectedContractorID != 0 &&
		p.SelectedQuoteID != nil && *p.SelectedQuoteID != 0
}

// IsStarted reports whether the start operation has already committed.
func (p *Project) IsStarted() bool {
	return p.ProjectStartedAt != nil
}
