package contract

import (
	"context"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	// Update reports false when no note with note.Id belongs to note.UserId.
	Update(ctx context.Context, note *entity.Note) (bool, error)
	// Delete removes the note only if it belongs to userId and reports
	// whether a row was deleted.
	Delete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
}
