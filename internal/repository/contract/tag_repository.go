package contract

import (
	"context"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TagRepository interface {
	// CreateManySkipDuplicates inserts tags, silently skipping any whose
	// (Name, UserId) already exists.
	CreateManySkipDuplicates(ctx context.Context, tags []*entity.Tag) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tag, error)
	FindByNoteId(ctx context.Context, noteId uuid.UUID) ([]*entity.Tag, error)
}
