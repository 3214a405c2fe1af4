package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/renolink/renolink/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListProjectFilter struct {
	Status      Status
	CustomerID  snowflake.ID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, project *Project) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Project, error)
	List(ctx context.Context, db *gorm.DB, filter ListProjectFilter, page pagination.Pagination) ([]*Project, error)

	// UpdateStatus writes the new status only when the row still holds
	// the expected one; returns the number of rows changed so callers
	// can detect a lost race.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected, target Status, now time.Time) (int64, error)

	// MarkStarted is the compare-and-swap for the start operation: it
	// transitions to in-progress only while project_started_at is
	// still null and the status is one of the allowed predecessors.
	MarkStarted(ctx context.Context, db *gorm.DB, id snowflake.ID, allowed []Status, now time.Time) (int64, error)

	// MarkCompleted stamps project_completed_at together with the
	// status write.
	MarkCompleted(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (int64, error)

	// SetSelection records the selected contractor and quote while
	// advancing the status.
	SetSelection(ctx context.Context, db *gorm.DB, id snowflake.ID, expected Status, contractorID, quoteID snowflake.ID, now time.Time) (int64, error)
}
