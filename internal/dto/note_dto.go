package dto

import (
	"time"

	"github.com/google/uuid"
)

type TagInput struct {
	Name string `json:"name" validate:"max=100"`
}

// CreateNoteRequest carries an optional category Name and optional Tags.
// Title and content presence is checked by the note service.
type CreateNoteRequest struct {
	Title   string     `json:"title" validate:"max=255"`
	Content string     `json:"content"`
	Name    *string    `json:"name" validate:"omitempty,max=100"`
	Tags    []TagInput `json:"tags" validate:"omitempty,dive"`
}

// UpdateNoteRequest is a partial update. Nil fields keep their stored value.
// Tags distinguishes "absent" (nil) from a supplied list.
type UpdateNoteRequest struct {
	Id      uuid.UUID   `json:"-"`
	Title   *string     `json:"title" validate:"omitempty,max=255"`
	Content *string     `json:"content"`
	Name    *string     `json:"name" validate:"omitempty,max=100"`
	Tags    *[]TagInput `json:"tags" validate:"omitempty,dive"`
}

type ListNotesQuery struct {
	Page    int
	PerPage int
	// UserId is the optional target user; only the caller's own id is allowed.
	UserId *uuid.UUID
}

type NoteResponse struct {
	Id         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	UserId     uuid.UUID  `json:"user_id"`
	CategoryId *uuid.UUID `json:"category_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type ShowNoteResponse struct {
	NoteResponse
	Category *CategoryResponse `json:"category"`
	Tags     []TagResponse     `json:"tags"`
}

// NoteMutationResponse is the body of create and update.
type NoteMutationResponse struct {
	Error   bool          `json:"error"`
	Message string        `json:"message"`
	Note    *NoteResponse `json:"note"`
}

type NotePage struct {
	Notes   []*NoteResponse
	Page    int
	PerPage int
}

type CategoryResponse struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type TagResponse struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
