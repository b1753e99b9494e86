package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/repository/contract"
	"notekeeper-be/internal/repository/specification"
	"notekeeper-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// memState is an in-memory stand-in for the database. Begin snapshots it and
// Rollback restores the snapshot, which is enough to observe atomicity.
type memState struct {
	users      map[uuid.UUID]entity.User
	notes      map[uuid.UUID]entity.Note
	noteOrder  []uuid.UUID
	categories map[uuid.UUID]entity.Category
	tags       map[uuid.UUID]entity.Tag
	noteTags   map[entity.NoteTag]struct{}
}

func newMemState() memState {
	return memState{
		users:      map[uuid.UUID]entity.User{},
		notes:      map[uuid.UUID]entity.Note{},
		categories: map[uuid.UUID]entity.Category{},
		tags:       map[uuid.UUID]entity.Tag{},
		noteTags:   map[entity.NoteTag]struct{}{},
	}
}

func (s memState) clone() memState {
	c := newMemState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.notes {
		c.notes[k] = v
	}
	c.noteOrder = append([]uuid.UUID(nil), s.noteOrder...)
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.tags {
		c.tags[k] = v
	}
	for k := range s.noteTags {
		c.noteTags[k] = struct{}{}
	}
	return c
}

type memStore struct {
	mu    sync.Mutex
	state memState
	// failOn names an operation ("note.create", "notetag.create", ...) that
	// returns errInjected.
	failOn string
	// beforeNoteUpdate runs under the lock right before a note update. It
	// stands for a write committed by another transaction, so it is applied
	// to open snapshots as well and survives their rollback.
	beforeNoteUpdate func(state *memState)
	open             map[*memState]struct{}
}

var errInjected = errors.New("injected failure")

func newMemStore() *memStore {
	return &memStore{state: newMemState(), open: map[*memState]struct{}{}}
}

func (s *memStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{store: s}
}

func (s *memStore) fail(op string) error {
	if s.failOn == op {
		return errInjected
	}
	return nil
}

func (s *memStore) noteTagsOf(noteId uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for link := range s.state.noteTags {
		if link.NoteId == noteId {
			names = append(names, s.state.tags[link.TagId].Name)
		}
	}
	sort.Strings(names)
	return names
}

type memUnitOfWork struct {
	store    *memStore
	snapshot *memState
	commits  int
}

func (u *memUnitOfWork) Begin(ctx context.Context) error {
	if u.snapshot != nil {
		return errors.New("transaction already started")
	}
	u.store.mu.Lock()
	snap := u.store.state.clone()
	u.snapshot = &snap
	u.store.open[u.snapshot] = struct{}{}
	u.store.mu.Unlock()
	return nil
}

func (u *memUnitOfWork) Commit() error {
	if u.snapshot == nil {
		return errors.New("no transaction to commit")
	}
	if err := u.store.fail("commit"); err != nil {
		return err
	}
	u.store.mu.Lock()
	delete(u.store.open, u.snapshot)
	u.store.mu.Unlock()
	u.snapshot = nil
	u.commits++
	return nil
}

func (u *memUnitOfWork) Rollback() error {
	if u.snapshot == nil {
		return nil
	}
	u.store.mu.Lock()
	delete(u.store.open, u.snapshot)
	u.store.state = *u.snapshot
	u.store.mu.Unlock()
	u.snapshot = nil
	return nil
}

func (u *memUnitOfWork) UserRepository() contract.UserRepository {
	return &memUserRepo{u.store}
}
func (u *memUnitOfWork) NoteRepository() contract.NoteRepository {
	return &memNoteRepo{u.store}
}
func (u *memUnitOfWork) CategoryRepository() contract.CategoryRepository {
	return &memCategoryRepo{u.store}
}
func (u *memUnitOfWork) TagRepository() contract.TagRepository {
	return &memTagRepo{u.store}
}
func (u *memUnitOfWork) NoteTagRepository() contract.NoteTagRepository {
	return &memNoteTagRepo{u.store}
}

// filter captures the specifications the services use.
type filter struct {
	id     *uuid.UUID
	userId *uuid.UUID
	email  *string
	name   *string
	names  map[string]struct{}
	limit  int
	offset int
}

func toFilter(specs []specification.Specification) filter {
	f := filter{limit: -1}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id := s.ID
			f.id = &id
		case specification.UserOwnedBy:
			id := s.UserID
			f.userId = &id
		case specification.ByEmail:
			email := s.Email
			f.email = &email
		case specification.ByName:
			name := s.Name
			f.name = &name
		case specification.ByNames:
			f.names = map[string]struct{}{}
			for _, n := range s.Names {
				f.names[n] = struct{}{}
			}
		case specification.Pagination:
			f.limit, f.offset = s.Limit, s.Offset
		}
	}
	return f
}

func (f filter) owned(id, userId uuid.UUID) bool {
	if f.id != nil && *f.id != id {
		return false
	}
	if f.userId != nil && *f.userId != userId {
		return false
	}
	return true
}

func (f filter) named(name string) bool {
	if f.name != nil && *f.name != name {
		return false
	}
	if f.names != nil {
		if _, ok := f.names[name]; !ok {
			return false
		}
	}
	return true
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("user.create"); err != nil {
		return err
	}
	r.s.state.users[user.Id] = *user
	return nil
}

func (r *memUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := toFilter(specs)
	for _, u := range r.s.state.users {
		if f.id != nil && *f.id != u.Id {
			continue
		}
		if f.email != nil && *f.email != u.Email {
			continue
		}
		user := u
		return &user, nil
	}
	return nil, nil
}

type memNoteRepo struct{ s *memStore }

func (r *memNoteRepo) Create(ctx context.Context, note *entity.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("note.create"); err != nil {
		return err
	}
	r.s.state.notes[note.Id] = *note
	r.s.state.noteOrder = append(r.s.state.noteOrder, note.Id)
	return nil
}

func (r *memNoteRepo) Update(ctx context.Context, note *entity.Note) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("note.update"); err != nil {
		return false, err
	}
	if r.s.beforeNoteUpdate != nil {
		r.s.beforeNoteUpdate(&r.s.state)
		for snap := range r.s.open {
			r.s.beforeNoteUpdate(snap)
		}
	}
	stored, ok := r.s.state.notes[note.Id]
	if !ok || stored.UserId != note.UserId {
		return false, nil
	}
	r.s.state.notes[note.Id] = *note
	return true, nil
}

func (r *memNoteRepo) Delete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("note.delete"); err != nil {
		return false, err
	}
	n, ok := r.s.state.notes[id]
	if !ok || n.UserId != userId {
		return false, nil
	}
	delete(r.s.state.notes, id)
	return true, nil
}

func (r *memNoteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	notes, err := r.FindAll(ctx, specs...)
	if err != nil || len(notes) == 0 {
		return nil, err
	}
	return notes[0], nil
}

func (r *memNoteRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := toFilter(specs)
	var res []*entity.Note
	for _, id := range r.s.state.noteOrder {
		n, ok := r.s.state.notes[id]
		if !ok || !f.owned(n.Id, n.UserId) {
			continue
		}
		note := n
		res = append(res, &note)
	}
	if f.offset > 0 {
		if f.offset >= len(res) {
			return nil, nil
		}
		res = res[f.offset:]
	}
	if f.limit >= 0 && f.limit < len(res) {
		res = res[:f.limit]
	}
	return res, nil
}

type memCategoryRepo struct{ s *memStore }

func (r *memCategoryRepo) Upsert(ctx context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("category.upsert"); err != nil {
		return err
	}
	for _, c := range r.s.state.categories {
		if c.Name == category.Name && c.UserId == category.UserId {
			*category = c
			return nil
		}
	}
	r.s.state.categories[category.Id] = *category
	return nil
}

func (r *memCategoryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Category, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memCategoryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := toFilter(specs)
	var res []*entity.Category
	for _, c := range r.s.state.categories {
		if !f.owned(c.Id, c.UserId) || !f.named(c.Name) {
			continue
		}
		category := c
		res = append(res, &category)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

type memTagRepo struct{ s *memStore }

func (r *memTagRepo) CreateManySkipDuplicates(ctx context.Context, tags []*entity.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tag.create"); err != nil {
		return err
	}
	for _, t := range tags {
		exists := false
		for _, stored := range r.s.state.tags {
			if stored.Name == t.Name && stored.UserId == t.UserId {
				exists = true
				break
			}
		}
		if !exists {
			r.s.state.tags[t.Id] = *t
		}
	}
	return nil
}

func (r *memTagRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := toFilter(specs)
	var res []*entity.Tag
	for _, t := range r.s.state.tags {
		if !f.owned(t.Id, t.UserId) || !f.named(t.Name) {
			continue
		}
		tag := t
		res = append(res, &tag)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (r *memTagRepo) FindByNoteId(ctx context.Context, noteId uuid.UUID) ([]*entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []*entity.Tag
	for link := range r.s.state.noteTags {
		if link.NoteId == noteId {
			tag := r.s.state.tags[link.TagId]
			res = append(res, &tag)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

type memNoteTagRepo struct{ s *memStore }

func (r *memNoteTagRepo) CreateMany(ctx context.Context, links []entity.NoteTag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("notetag.create"); err != nil {
		return err
	}
	for _, link := range links {
		r.s.state.noteTags[link] = struct{}{}
	}
	return nil
}

func (r *memNoteTagRepo) DeleteByNoteId(ctx context.Context, noteId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("notetag.delete"); err != nil {
		return err
	}
	for link := range r.s.state.noteTags {
		if link.NoteId == noteId {
			delete(r.s.state.noteTags, link)
		}
	}
	return nil
}
