package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Insert creates the record; a duplicate quote_request_id surfaces
	// as ErrAlreadyExists so callers can treat it as idempotent
	// success.
	Insert(ctx context.Context, db *gorm.DB, record *CommissionRecord) error

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CommissionRecord, error)
	FindByProjectID(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (*CommissionRecord, error)
	List(ctx context.Context, db *gorm.DB, status CommissionStatus) ([]*CommissionRecord, error)
	SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status CommissionStatus, receivedAt *time.Time, now time.Time) (int64, error)
}
