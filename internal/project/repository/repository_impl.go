package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/renolink/renolink/internal/project/domain"
	"github.com/renolink/renolink/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Create(project).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&project).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListProjectFilter, page pagination.Pagination) ([]*domain.Project, error) {
	var projects []*domain.Project
	stmt := db.WithContext(ctx).Model(&domain.Project{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil && cursor.CreatedAt != "" {
			stmt = stmt.Where("created_at < ?", cursor.CreatedAt)
		}
	}
	limit := page.PageSize
	if limit <= 0 {
		limit = 10
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected, target domain.Status, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE quote_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		target, now, id, expected,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) MarkStarted(ctx context.Context, db *gorm.DB, id snowflake.ID, allowed []domain.Status, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE quote_requests
		 SET status = ?, project_started_at = ?, updated_at = ?
		 WHERE id = ? AND project_started_at IS NULL AND status IN ?`,
		domain.StatusInProgress, now, now, id, allowed,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) MarkCompleted(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE quote_requests
		 SET status = ?, project_completed_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusCompleted, now, now, id, domain.StatusInProgress,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) SetSelection(ctx context.Context, db *gorm.DB, id snowflake.ID, expected domain.Status, contractorID, quoteID snowflake.ID, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE quote_requests
		 SET status = ?, selected_contractor_id = ?, selected_quote_id = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusContractorSelected, contractorID, quoteID, now, id, expected,
	)
	return res.RowsAffected, res.Error
}
