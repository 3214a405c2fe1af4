package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/renolink/renolink/internal/user/domain"
	"github.com/renolink/renolink/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	elevated db.Elevated
}

func Provide(elevated db.Elevated) domain.Repository {
	return &repo{elevated: elevated}
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := r.elevated.WithContext(ctx).
		Where("id = ?", id).
		Take(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
