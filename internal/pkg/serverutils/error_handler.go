package serverutils

import (
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware is the single place where errors returned by
// handlers become HTTP responses.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err, log)
	}
}

// WriteError renders err using the error taxonomy. Internal failures are
// logged with their cause and answered with a generic message.
func WriteError(ctx *fiber.Ctx, err error, log logger.ILogger) error {
	appErr := apperror.From(err)

	switch appErr.Kind {
	case apperror.KindInternal:
		log.Error("http", "unhandled error", map[string]interface{}{
			"error":  err,
			"method": ctx.Method(),
			"path":   ctx.Path(),
		})
	case apperror.KindBadRequest, apperror.KindUnauthorized, apperror.KindNotFound, apperror.KindTooManyRequests:
		log.Debug("http", appErr.Message, map[string]interface{}{
			"code":   appErr.Kind.Code(),
			"method": ctx.Method(),
			"path":   ctx.Path(),
		})
	}

	return ctx.Status(appErr.StatusCode()).JSON(ErrorResponse(appErr.Kind.Code(), appErr.Message))
}
