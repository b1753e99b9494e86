package implementation

import (
	"context"
	"fmt"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/mapper"
	"notekeeper-be/internal/model"
	"notekeeper-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NoteTagRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteTagRepository(db *gorm.DB) contract.NoteTagRepository {
	return &NoteTagRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteTagRepositoryImpl) CreateMany(ctx context.Context, links []entity.NoteTag) error {
	if len(links) == 0 {
		return nil
	}

	models := r.mapper.NoteTagsToModels(links)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models).Error
	if err != nil {
		return fmt.Errorf("insert note tags: %w", err)
	}
	return nil
}

func (r *NoteTagRepositoryImpl) DeleteByNoteId(ctx context.Context, noteId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("note_id = ?", noteId).Delete(&model.NoteTag{}).Error
}
