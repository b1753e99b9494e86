package mapper

import (
	"time"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/model"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.Note{
		Id:         n.Id,
		Title:      n.Title,
		Content:    n.Content,
		UserId:     n.UserId,
		CategoryId: n.CategoryId,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	return &model.Note{
		Id:         n.Id,
		Title:      n.Title,
		Content:    n.Content,
		UserId:     n.UserId,
		CategoryId: n.CategoryId,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func (m *NoteMapper) NoteTagsToModels(links []entity.NoteTag) []*model.NoteTag {
	models := make([]*model.NoteTag, len(links))
	for i, l := range links {
		models[i] = &model.NoteTag{NoteId: l.NoteId, TagId: l.TagId}
	}
	return models
}
