package controller

import (
	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/serverutils"
	"notekeeper-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
	auth        fiber.Handler
}

func NewNoteController(noteService service.INoteService, auth fiber.Handler) INoteController {
	return &noteController{
		noteService: noteService,
		auth:        auth,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notes", c.auth)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	note, err := c.noteService.Create(ctx.UserContext(), serverutils.UserID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(dto.NoteMutationResponse{
		Error:   false,
		Message: "Note created",
		Note:    note,
	})
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	query := dto.ListNotesQuery{
		Page:    ctx.QueryInt("page", 0),
		PerPage: ctx.QueryInt("per_page", 0),
	}
	if raw := ctx.Query("user_id"); raw != "" {
		target, err := uuid.Parse(raw)
		if err != nil {
			return apperror.BadRequest("Invalid user_id")
		}
		query.UserId = &target
	}

	page, err := c.noteService.List(ctx.UserContext(), serverutils.UserID(ctx), query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.PaginatedSuccessResponse("Success list notes", page.Notes, page.Page, page.PerPage))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.noteService.Show(ctx.UserContext(), serverutils.UserID(ctx), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id

	note, err := c.noteService.Update(ctx.UserContext(), serverutils.UserID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(dto.NoteMutationResponse{
		Error:   false,
		Message: "Note updated",
		Note:    note,
	})
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.noteService.Delete(ctx.UserContext(), serverutils.UserID(ctx), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Note deleted", nil))
}
