package model

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_categories_name_user_id,priority:1"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_categories_name_user_id,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Category) TableName() string {
	return "categories"
}
