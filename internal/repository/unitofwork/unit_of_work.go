package unitofwork

import (
	"context"

	"notekeeper-be/internal/repository/contract"
)

// UnitOfWork groups repositories over one connection. Between Begin and
// Commit/Rollback every repository it hands out shares the transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	NoteRepository() contract.NoteRepository
	CategoryRepository() contract.CategoryRepository
	TagRepository() contract.TagRepository
	NoteTagRepository() contract.NoteTagRepository
}
