package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category is unique per (Name, UserId).
type Category struct {
	Id        uuid.UUID
	Name      string
	UserId    uuid.UUID
	CreatedAt time.Time
}
