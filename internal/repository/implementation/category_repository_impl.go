package implementation

import (
	"context"
	"errors"
	"fmt"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/mapper"
	"notekeeper-be/internal/model"
	"notekeeper-be/internal/repository/contract"
	"notekeeper-be/internal/repository/scope"
	"notekeeper-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CategoryMapper
}

func NewCategoryRepository(db *gorm.DB) contract.CategoryRepository {
	return &CategoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewCategoryMapper(),
	}
}

// Upsert relies on the (name, user_id) unique index: a concurrent insert of
// the same key blocks on the index until the other transaction finishes,
// after which ON CONFLICT DO NOTHING applies and the read below sees the
// committed row.
func (r *CategoryRepositoryImpl) Upsert(ctx context.Context, category *entity.Category) error {
	m := r.mapper.ToModel(category)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(m).Error
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}

	var stored model.Category
	err = r.db.WithContext(ctx).
		Where("name = ? AND user_id = ?", m.Name, m.UserId).
		First(&stored).Error
	if err != nil {
		return fmt.Errorf("read category: %w", err)
	}

	*category = *r.mapper.ToEntity(&stored)
	return nil
}

func (r *CategoryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Category, error) {
	var m model.Category
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CategoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Category, error) {
	var models []*model.Category
	query := applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByName), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
