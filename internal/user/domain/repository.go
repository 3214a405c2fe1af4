package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var ErrNotFound = errors.New("user_not_found")

// Repository reads users through the elevated DB handle injected at
// construction.
type Repository interface {
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
}
