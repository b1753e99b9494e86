package mapper

import (
	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/model"
)

type TagMapper struct{}

func NewTagMapper() *TagMapper {
	return &TagMapper{}
}

func (m *TagMapper) ToEntity(t *model.Tag) *entity.Tag {
	if t == nil {
		return nil
	}
	return &entity.Tag{
		Id:        t.Id,
		Name:      t.Name,
		UserId:    t.UserId,
		CreatedAt: t.CreatedAt,
	}
}

func (m *TagMapper) ToModel(t *entity.Tag) *model.Tag {
	if t == nil {
		return nil
	}
	return &model.Tag{
		Id:        t.Id,
		Name:      t.Name,
		UserId:    t.UserId,
		CreatedAt: t.CreatedAt,
	}
}

func (m *TagMapper) ToEntities(tags []*model.Tag) []*entity.Tag {
	entities := make([]*entity.Tag, len(tags))
	for i, t := range tags {
		entities[i] = m.ToEntity(t)
	}
	return entities
}

func (m *TagMapper) ToModels(tags []*entity.Tag) []*model.Tag {
	models := make([]*model.Tag, len(tags))
	for i, t := range tags {
		models[i] = m.ToModel(t)
	}
	return models
}
