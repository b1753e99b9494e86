package scope

import "gorm.io/gorm"

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

func OrderByName(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}
