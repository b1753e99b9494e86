package model

import (
	"fmt"

	"gorm.io/gorm"
)

// All lists every table owned by the service, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Tag{},
		&Note{},
		&NoteTag{},
	}
}

// foreignKeys are added after AutoMigrate because the models carry no
// association fields. Each statement is idempotent.
var foreignKeys = []struct {
	name string
	sql  string
}{
	{"fk_categories_user", `ALTER TABLE categories ADD CONSTRAINT fk_categories_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE`},
	{"fk_tags_user", `ALTER TABLE tags ADD CONSTRAINT fk_tags_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE`},
	{"fk_notes_user", `ALTER TABLE notes ADD CONSTRAINT fk_notes_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE`},
	{"fk_notes_category", `ALTER TABLE notes ADD CONSTRAINT fk_notes_category FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL`},
	{"fk_note_tags_note", `ALTER TABLE note_tags ADD CONSTRAINT fk_note_tags_note FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE`},
	{"fk_note_tags_tag", `ALTER TABLE note_tags ADD CONSTRAINT fk_note_tags_tag FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE`},
}

// MigrationStep is reported to the caller so a CLI can print progress.
type MigrationStep func(step string)

// Migrate creates or updates the schema. It is safe to run repeatedly.
func Migrate(db *gorm.DB, report MigrationStep) error {
	if report == nil {
		report = func(string) {}
	}

	report("enable pgcrypto")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}

	report("auto-migrate tables")
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	for _, fk := range foreignKeys {
		report("foreign key " + fk.name)
		stmt := fmt.Sprintf(
			`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN %s; END IF; END $$;`,
			fk.name, fk.sql,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", fk.name, err)
		}
	}

	return nil
}
