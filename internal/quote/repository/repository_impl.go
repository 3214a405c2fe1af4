package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/renolink/renolink/internal/quote/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Create(quote).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&quote).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repo) FindByProjectAndContractor(ctx context.Context, db *gorm.DB, projectID, contractorID snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).
		Where("project_id = ? AND contractor_id = ?", projectID, contractorID).
		Order("created_at desc").
		Take(&quote).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repo) ListByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]*domain.Quote, error) {
	var quotes []*domain.Quote
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at asc").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.QuoteStatus, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE contractor_quotes SET status = ?, updated_at = ? WHERE id = ?`,
		status, now, id,
	).Error
}

func (r *repo) RejectOthers(ctx context.Context, db *gorm.DB, projectID, selectedID snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE contractor_quotes SET status = ?, updated_at = ? WHERE project_id = ? AND id <> ?`,
		domain.QuoteRejected, now, projectID, selectedID,
	).Error
}
