package contract

import (
	"context"

	"notekeeper-be/internal/entity"

	"github.com/google/uuid"
)

type NoteTagRepository interface {
	CreateMany(ctx context.Context, links []entity.NoteTag) error
	DeleteByNoteId(ctx context.Context, noteId uuid.UUID) error
}
