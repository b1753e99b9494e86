package model

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title      string     `gorm:"type:varchar(255);not null"`
	Content    string     `gorm:"type:text;not null"`
	UserId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	CategoryId *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

func (Note) TableName() string {
	return "notes"
}

// NoteTag is the join row between notes and tags. Both columns form the
// primary key.
type NoteTag struct {
	NoteId uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagId  uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (NoteTag) TableName() string {
	return "note_tags"
}
