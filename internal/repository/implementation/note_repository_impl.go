package implementation

import (
	"context"
	"errors"
	"time"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/mapper"
	"notekeeper-be/internal/model"
	"notekeeper-be/internal/repository/contract"
	"notekeeper-be/internal/repository/scope"
	"notekeeper-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

// Update writes the mutable columns of a note owned by note.UserId. It never
// inserts: a note deleted since it was read reports false.
func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) (bool, error) {
	m := r.mapper.ToModel(note)
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now()
	}

	res := r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ? AND user_id = ?", m.Id, m.UserId).
		Updates(map[string]interface{}{
			"title":       m.Title,
			"content":     m.Content,
			"category_id": m.CategoryId,
			"updated_at":  m.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	*note = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userId).
		Delete(&model.Note{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.Note
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedAsc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
