package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/renolink/renolink/internal/contractor/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, contractor *domain.Contractor) error {
	return db.WithContext(ctx).Create(contractor).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Contractor, error) {
	var contractor domain.Contractor
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&contractor).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contractor, nil
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Contractor, error) {
	var contractor domain.Contractor
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&contractor).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contractor, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListContractorFilter) ([]*domain.Contractor, error) {
	var contractors []*domain.Contractor
	stmt := db.WithContext(ctx).Model(&domain.Contractor{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Specialty != "" {
		stmt = stmt.Where("specialties LIKE ?", "%\""+filter.Specialty+"\"%")
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&contractors).Error
	if err != nil {
		return nil, err
	}
	return contractors, nil
}
