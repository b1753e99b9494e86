package serverutils

import (
	"strings"

	"notekeeper-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userIdLocal = "user_id"

// TokenVerifier is satisfied by *token.Issuer.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// JwtMiddleware accepts the session cookie or an "Authorization: Bearer"
// header and stores the verified user id in ctx.Locals. Both are tried, so a
// stale cookie does not shadow a valid header.
func JwtMiddleware(verifier TokenVerifier, cookieName string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var candidates []string
		if cookie := ctx.Cookies(cookieName); cookie != "" {
			candidates = append(candidates, cookie)
		}

		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if authHeader != "" {
			bearer := ""
			if strings.HasPrefix(authHeader, "Bearer ") {
				bearer = strings.TrimSpace(authHeader[len("Bearer "):])
			}
			if bearer == "" && len(candidates) == 0 {
				return apperror.Unauthorized("Token missing or malformed")
			}
			if bearer != "" {
				candidates = append(candidates, bearer)
			}
		}

		if len(candidates) == 0 {
			return apperror.Unauthorized("Unauthorized")
		}

		var lastErr error
		for _, tokenStr := range candidates {
			userId, err := verifier.Verify(tokenStr)
			if err != nil {
				lastErr = err
				continue
			}
			ctx.Locals(userIdLocal, userId)
			return ctx.Next()
		}

		return apperror.Unauthorized("Invalid or expired token").WithCause(lastErr)
	}
}

// UserID returns the id stored by JwtMiddleware, or uuid.Nil on routes that
// are not gated.
func UserID(ctx *fiber.Ctx) uuid.UUID {
	if id, ok := ctx.Locals(userIdLocal).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// ParseUUIDParam reads a path parameter as a UUID. A malformed value is a
// BadRequest.
func ParseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := ctx.Params(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid " + name)
	}
	return id, nil
}
