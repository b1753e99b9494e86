package bootstrap

import (
	"time"

	"notekeeper-be/internal/config"
	"notekeeper-be/internal/controller"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/ratelimit"
	"notekeeper-be/internal/pkg/serverutils"
	"notekeeper-be/internal/pkg/token"
	"notekeeper-be/internal/repository/unitofwork"
	"notekeeper-be/internal/service"
	"notekeeper-be/pkg/events"

	pktNats "notekeeper-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController  controller.IAuthController
	NoteController  controller.INoteController
	LabelController controller.ILabelController

	// Background Services (Exposed for main.go to run)
	ActivityService service.IActivityService

	DB     *gorm.DB
	Logger logger.ILogger

	bus     *events.Bus
	natsPub *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	issuer, err := token.NewIssuer(cfg.Auth.JwtSecret, cfg.Auth.TokenTTL, cfg.Auth.CookieName, cfg.Auth.CookieSecure)
	if err != nil {
		return nil, err
	}

	// 2. Event Bus
	bus := events.NewBus(cfg.Events.NoteTopic, watermill.NewStdLogger(false, false))
	publishers := events.Fanout{bus}

	// NATS forwarding is optional.
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher, events stay in-process", map[string]interface{}{
				"url":   cfg.App.NatsURL,
				"error": err.Error(),
			})
		} else {
			publishers = append(publishers, natsPub)
		}
	}

	activityLogger := activityLoggerFor(cfg.App.ActivityLogPath, sysLogger)

	// 3. Services
	noteService := service.NewNoteService(uowFactory, publishers, sysLogger)
	authService := service.NewAuthService(uowFactory, issuer, sysLogger)
	activityService := service.NewActivityService(bus, activityLogger)

	// 4. Middleware shared by controllers
	gate := serverutils.JwtMiddleware(issuer, cfg.Auth.CookieName)
	throttle := serverutils.RateLimitMiddleware(
		ratelimit.New(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst, 10*time.Minute),
	)

	// 5. Controllers
	return &Container{
		AuthController:  controller.NewAuthController(authService, gate, throttle, cfg.Auth.CookieName),
		NoteController:  controller.NewNoteController(noteService, gate),
		LabelController: controller.NewLabelController(noteService, gate),

		ActivityService: activityService,

		DB:     db,
		Logger: sysLogger,

		bus:     bus,
		natsPub: natsPub,
	}, nil
}

// activityLoggerFor writes the activity stream to its own file, or to the
// system log when no path is configured.
func activityLoggerFor(path string, sysLogger logger.ILogger) logger.ILogger {
	if path == "" {
		return sysLogger
	}
	return logger.NewIsolatedLogger(path)
}

// Close releases the event transports. The database pool is owned by main.
func (c *Container) Close() error {
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	return c.bus.Close()
}
