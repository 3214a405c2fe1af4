package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *Quote) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)

	// FindByProjectAndContractor is the fallback lookup for projects
	// whose selected_quote_id linkage went stale.
	FindByProjectAndContractor(ctx context.Context, db *gorm.DB, projectID, contractorID snowflake.ID) (*Quote, error)

	ListByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]*Quote, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status QuoteStatus, now time.Time) error
	RejectOthers(ctx context.Context, db *gorm.DB, projectID, selectedID snowflake.ID, now time.Time) error
}
