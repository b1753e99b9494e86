package controller

import (
	"notekeeper-be/internal/pkg/serverutils"
	"notekeeper-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ILabelController exposes the caller's categories and tags read-only.
type ILabelController interface {
	RegisterRoutes(r fiber.Router)
	ListCategories(ctx *fiber.Ctx) error
	ListTags(ctx *fiber.Ctx) error
}

type labelController struct {
	noteService service.INoteService
	auth        fiber.Handler
}

func NewLabelController(noteService service.INoteService, auth fiber.Handler) ILabelController {
	return &labelController{
		noteService: noteService,
		auth:        auth,
	}
}

func (c *labelController) RegisterRoutes(r fiber.Router) {
	r.Get("/categories", c.auth, c.ListCategories)
	r.Get("/tags", c.auth, c.ListTags)
}

func (c *labelController) ListCategories(ctx *fiber.Ctx) error {
	res, err := c.noteService.ListCategories(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.ListSuccessResponse("Success list categories", res))
}

func (c *labelController) ListTags(ctx *fiber.Ctx) error {
	res, err := c.noteService.ListTags(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.ListSuccessResponse("Success list tags", res))
}
