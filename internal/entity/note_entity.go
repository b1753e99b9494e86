package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id         uuid.UUID
	Title      string
	Content    string
	UserId     uuid.UUID
	CategoryId *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// NoteTag links a note to one of its owner's tags.
type NoteTag struct {
	NoteId uuid.UUID
	TagId  uuid.UUID
}
