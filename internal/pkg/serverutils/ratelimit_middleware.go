package serverutils

import (
	"notekeeper-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// KeyedLimiter is satisfied by *ratelimit.KeyedRateLimiter.
type KeyedLimiter interface {
	Allow(key string) bool
}

// RateLimitMiddleware throttles requests per client IP.
func RateLimitMiddleware(limiter KeyedLimiter) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !limiter.Allow(ctx.IP()) {
			return apperror.TooManyRequests("Too many requests, please try again later")
		}
		return ctx.Next()
	}
}

// ParseBody decodes the JSON body into dst and validates it. A body that is
// not valid JSON is a BadRequest.
func ParseBody(ctx *fiber.Ctx, dst interface{}) error {
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(dst); err != nil {
			return apperror.BadRequest("Invalid request body").WithCause(err)
		}
	}
	return ValidateRequest(dst)
}
