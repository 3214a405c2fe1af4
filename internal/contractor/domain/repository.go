package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListContractorFilter struct {
	Status    ContractorStatus
	Specialty string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contractor *Contractor) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contractor, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Contractor, error)
	List(ctx context.Context, db *gorm.DB, filter ListContractorFilter) ([]*Contractor, error)
}
