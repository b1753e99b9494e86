package server

import (
	"context"

	"notekeeper-be/internal/bootstrap"
	"notekeeper-be/internal/config"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB
		// Errors that escape the middleware below (e.g. body limit) still get
		// the standard error body.
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return serverutils.WriteError(ctx, err, container.Logger)
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	app.Get("/healthz", healthCheck(container.DB))

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("SERVER", "Server is running", map[string]interface{}{
		"port": s.cfg.App.Port,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.AuthController.RegisterRoutes(api)
	c.NoteController.RegisterRoutes(api)
	c.LabelController.RegisterRoutes(api)
}

func healthCheck(db *gorm.DB) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil {
			return apperror.Internal(err)
		}
		if err := sqlDB.PingContext(ctx.UserContext()); err != nil {
			return apperror.Internal(err)
		}
		return ctx.JSON(serverutils.SuccessResponse[any]("ok", nil))
	}
}
