package implementation

import (
	"context"
	"fmt"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/mapper"
	"notekeeper-be/internal/model"
	"notekeeper-be/internal/repository/contract"
	"notekeeper-be/internal/repository/scope"
	"notekeeper-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TagMapper
}

func NewTagRepository(db *gorm.DB) contract.TagRepository {
	return &TagRepositoryImpl{
		db:     db,
		mapper: mapper.NewTagMapper(),
	}
}

func (r *TagRepositoryImpl) CreateManySkipDuplicates(ctx context.Context, tags []*entity.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	models := r.mapper.ToModels(tags)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&models).Error
	if err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	return nil
}

func (r *TagRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tag, error) {
	var models []*model.Tag
	query := applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByName), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TagRepositoryImpl) FindByNoteId(ctx context.Context, noteId uuid.UUID) ([]*entity.Tag, error) {
	var models []*model.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN note_tags ON note_tags.tag_id = tags.id").
		Where("note_tags.note_id = ?", noteId).
		Order("tags.name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
