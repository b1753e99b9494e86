package contract

import (
	"context"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/repository/specification"
)

type CategoryRepository interface {
	// Upsert inserts the category unless (Name, UserId) already exists and
	// fills category with the stored row either way.
	Upsert(ctx context.Context, category *entity.Category) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Category, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Category, error)
}
