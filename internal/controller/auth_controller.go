package controller

import (
	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/pkg/serverutils"
	"notekeeper-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
}

type authController struct {
	service    service.IAuthService
	auth       fiber.Handler
	throttle   fiber.Handler
	cookieName string
}

// NewAuthController wires the /user routes. auth gates /me and throttle is
// applied to register and login.
func NewAuthController(service service.IAuthService, auth, throttle fiber.Handler, cookieName string) IAuthController {
	return &authController{
		service:    service,
		auth:       auth,
		throttle:   throttle,
		cookieName: cookieName,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user")
	h.Post("/register", c.throttle, c.Register)
	h.Post("/login", c.throttle, c.Login)
	h.Post("/logout", c.Logout)
	h.Get("/me", c.auth, c.Me)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	session, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	ctx.Cookie(sessionCookie(session))
	return ctx.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		Error:   false,
		Message: "Registration successful",
		Token:   session.Token,
	})
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	session, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	ctx.Cookie(sessionCookie(session))
	return ctx.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		Error:   false,
		Message: "Login successful",
		Token:   session.Token,
	})
}

// Logout only drops the cookie; issued tokens stay valid until they expire.
func (c *authController) Logout(ctx *fiber.Ctx) error {
	ctx.ClearCookie(c.cookieName)
	return ctx.JSON(serverutils.SuccessResponse[any]("Logged out successfully", nil))
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	res, err := c.service.Me(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func sessionCookie(session *service.Session) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     session.Cookie.Name,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(session.Cookie.MaxAge.Seconds()),
		HTTPOnly: session.Cookie.HTTPOnly,
		Secure:   session.Cookie.Secure,
		SameSite: session.Cookie.SameSite,
	}
}
