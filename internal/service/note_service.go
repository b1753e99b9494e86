package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/repository/specification"
	"notekeeper-be/internal/repository/unitofwork"
	"notekeeper-be/pkg/events"

	"github.com/google/uuid"
)

const (
	DefaultPerPage = 50
	MaxPerPage     = 100

	publishTimeout = 2 * time.Second
)

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, userId uuid.UUID, query dto.ListNotesQuery) (*dto.NotePage, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error)
	ListCategories(ctx context.Context, userId uuid.UUID) ([]dto.CategoryResponse, error)
	ListTags(ctx context.Context, userId uuid.UUID) ([]dto.TagResponse, error)
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
	now        func() time.Time
}

// NewNoteService wires the note service. publisher may be nil, in which case
// lifecycle events are not emitted.
func NewNoteService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger) INoteService {
	return &noteService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
	}
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthorized("User not authorized")
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, apperror.BadRequest("Title and content are required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := c.now()
	note := entity.Note{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		UserId:    userId,
		CreatedAt: now,
	}

	if name := trimmed(req.Name); name != "" {
		category, err := c.upsertCategory(ctx, uow, userId, name)
		if err != nil {
			return nil, err
		}
		note.CategoryId = &category.Id
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	if names := normalizeTagNames(req.Tags); len(names) > 0 {
		if err := c.linkTags(ctx, uow, userId, note.Id, names); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.publish(ctx, events.NoteCreated, &note)

	return toNoteResponse(&note), nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthorized("User not authorized")
	}
	if req.Id == uuid.Nil {
		return nil, apperror.BadRequest("Note id is required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("find note: %w", err)
	}
	if note == nil {
		return nil, apperror.NotFound("Note not found")
	}

	// Blank values are treated as omitted; stored fields are never cleared.
	if title := trimmed(req.Title); title != "" {
		note.Title = *req.Title
	}
	if content := trimmed(req.Content); content != "" {
		note.Content = *req.Content
	}
	if name := trimmed(req.Name); name != "" {
		category, err := c.upsertCategory(ctx, uow, userId, name)
		if err != nil {
			return nil, err
		}
		note.CategoryId = &category.Id
	}

	now := c.now()
	note.UpdatedAt = &now

	updated, err := uow.NoteRepository().Update(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	if !updated {
		return nil, apperror.NotFound("Note not found")
	}

	// Tags are replace-all, but only when a non-empty list was sent.
	if req.Tags != nil {
		if names := normalizeTagNames(*req.Tags); len(names) > 0 {
			if err := uow.NoteTagRepository().DeleteByNoteId(ctx, note.Id); err != nil {
				return nil, fmt.Errorf("clear note tags: %w", err)
			}
			if err := c.linkTags(ctx, uow, userId, note.Id, names); err != nil {
				return nil, err
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.publish(ctx, events.NoteUpdated, note)

	return toNoteResponse(note), nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if userId == uuid.Nil {
		return apperror.Unauthorized("User not authorized")
	}
	if id == uuid.Nil {
		return apperror.NotFound("Note not found")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return fmt.Errorf("find note: %w", err)
	}
	if note == nil {
		return apperror.NotFound("Note not found")
	}

	if err := uow.NoteTagRepository().DeleteByNoteId(ctx, id); err != nil {
		return fmt.Errorf("delete note tags: %w", err)
	}

	deleted, err := uow.NoteRepository().Delete(ctx, id, userId)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if !deleted {
		return apperror.NotFound("Note not found")
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.publish(ctx, events.NoteDeleted, note)

	return nil
}

func (c *noteService) List(ctx context.Context, userId uuid.UUID, query dto.ListNotesQuery) (*dto.NotePage, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthorized("User not authorized")
	}
	if query.UserId != nil && *query.UserId != userId {
		return nil, apperror.Unauthorized("Not allowed to list another user's notes")
	}

	page, perPage := normalizePage(query.Page, query.PerPage)

	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	res := make([]*dto.NoteResponse, 0, len(notes))
	for _, note := range notes {
		res = append(res, toNoteResponse(note))
	}

	return &dto.NotePage{Notes: res, Page: page, PerPage: perPage}, nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthorized("User not authorized")
	}
	if id == uuid.Nil {
		return nil, apperror.BadRequest("Note id is required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("find note: %w", err)
	}
	if note == nil {
		return nil, apperror.NotFound("Note not found")
	}

	res := dto.ShowNoteResponse{
		NoteResponse: *toNoteResponse(note),
		Tags:         []dto.TagResponse{},
	}

	if note.CategoryId != nil {
		category, err := uow.CategoryRepository().FindOne(ctx,
			specification.ByID{ID: *note.CategoryId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, fmt.Errorf("find category: %w", err)
		}
		if category != nil {
			res.Category = &dto.CategoryResponse{Id: category.Id, Name: category.Name}
		}
	}

	tags, err := uow.TagRepository().FindByNoteId(ctx, note.Id)
	if err != nil {
		return nil, fmt.Errorf("find note tags: %w", err)
	}
	for _, tag := range tags {
		res.Tags = append(res.Tags, dto.TagResponse{Id: tag.Id, Name: tag.Name})
	}

	return &res, nil
}

func (c *noteService) ListCategories(ctx context.Context, userId uuid.UUID) ([]dto.CategoryResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthorized("User not authorized")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	categories, err := uow.CategoryRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	res := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		res = append(res, dto.CategoryResponse{Id: category.Id, Name: category.Name})
	}
	return res, nil
}

func (c *noteService) ListTags(ctx context.Context, userId uuid.UUID) ([]dto.TagResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthorized("User not authorized")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	tags, err := uow.TagRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	res := make([]dto.TagResponse, 0, len(tags))
	for _, tag := range tags {
		res = append(res, dto.TagResponse{Id: tag.Id, Name: tag.Name})
	}
	return res, nil
}

func (c *noteService) upsertCategory(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, name string) (*entity.Category, error) {
	category := &entity.Category{
		Id:        uuid.New(),
		Name:      name,
		UserId:    userId,
		CreatedAt: c.now(),
	}
	if err := uow.CategoryRepository().Upsert(ctx, category); err != nil {
		return nil, fmt.Errorf("upsert category: %w", err)
	}
	return category, nil
}

// linkTags creates any missing tags for the user, then attaches every tag in
// names to the note. names must already be normalized.
func (c *noteService) linkTags(ctx context.Context, uow unitofwork.UnitOfWork, userId, noteId uuid.UUID, names []string) error {
	now := c.now()
	candidates := make([]*entity.Tag, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, &entity.Tag{
			Id:        uuid.New(),
			Name:      name,
			UserId:    userId,
			CreatedAt: now,
		})
	}

	if err := uow.TagRepository().CreateManySkipDuplicates(ctx, candidates); err != nil {
		return fmt.Errorf("create tags: %w", err)
	}

	// Re-read so pre-existing tags resolve to their stored ids.
	stored, err := uow.TagRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByNames{Names: names},
	)
	if err != nil {
		return fmt.Errorf("find tags: %w", err)
	}

	links := make([]entity.NoteTag, 0, len(stored))
	for _, tag := range stored {
		links = append(links, entity.NoteTag{NoteId: noteId, TagId: tag.Id})
	}

	if err := uow.NoteTagRepository().CreateMany(ctx, links); err != nil {
		return fmt.Errorf("link tags: %w", err)
	}
	return nil
}

func (c *noteService) publish(ctx context.Context, eventType string, note *entity.Note) {
	if c.publisher == nil {
		return
	}

	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"note_id": note.Id.String(),
			"user_id": note.UserId.String(),
			"title":   note.Title,
		},
		OccurredAt: c.now(),
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// The write is already committed; a lost event only costs an activity line.
	if err := c.publisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("NOTE_SERVICE", "Failed to publish note event", map[string]interface{}{
			"type":    eventType,
			"note_id": note.Id.String(),
			"error":   err.Error(),
		})
	}
}

// normalizeTagNames trims names, drops blanks and removes duplicates while
// keeping request order.
func normalizeTagNames(tags []dto.TagInput) []string {
	seen := make(map[string]struct{}, len(tags))
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		name := strings.TrimSpace(tag.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func toNoteResponse(note *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:         note.Id,
		Title:      note.Title,
		Content:    note.Content,
		UserId:     note.UserId,
		CategoryId: note.CategoryId,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
	}
}
