package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tag is unique per (Name, UserId) and shared by all of the user's notes.
type Tag struct {
	Id        uuid.UUID
	Name      string
	UserId    uuid.UUID
	CreatedAt time.Time
}
