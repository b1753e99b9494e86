package specification

import "gorm.io/gorm"

// ByName matches a category or tag name exactly.
type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

type ByNames struct {
	Names []string
}

func (s ByNames) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name IN ?", s.Names)
}
