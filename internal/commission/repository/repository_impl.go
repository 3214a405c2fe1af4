package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/renolink/renolink/internal/commission/domain"
	"github.com/renolink/renolink/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, record *domain.CommissionRecord) error {
	err := conn.WithContext(ctx).Create(record).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.CommissionRecord, error) {
	var record domain.CommissionRecord
	err := conn.WithContext(ctx).
		Where("id = ?", id).
		Take(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) FindByProjectID(ctx context.Context, conn *gorm.DB, projectID snowflake.ID) (*domain.CommissionRecord, error) {
	var record domain.CommissionRecord
	err := conn.WithContext(ctx).
		Where("quote_request_id = ?", projectID).
		Take(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, status domain.CommissionStatus) ([]*domain.CommissionRecord, error) {
	var records []*domain.CommissionRecord
	stmt := conn.WithContext(ctx).Model(&domain.CommissionRecord{})
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	err := stmt.
		Order("started_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) SetStatus(ctx context.Context, conn *gorm.DB, id snowflake.ID, status domain.CommissionStatus, receivedAt *time.Time, now time.Time) (int64, error) {
	res := conn.WithContext(ctx).Exec(
		`UPDATE commission_tracking SET status = ?, payment_received_at = ?, updated_at = ? WHERE id = ?`,
		status, receivedAt, now, id,
	)
	return res.RowsAffected, res.Error
}
