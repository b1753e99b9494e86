package dto

import (
	"time"

	"github.com/google/uuid"
)

// Presence is checked by the auth service so the messages follow a fixed
// field order; the tags here only bound the shape of supplied values.
type RegisterRequest struct {
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"omitempty,max=72"`
	Username string `json:"username" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,max=255"`
	Password string `json:"password" validate:"omitempty,max=72"`
}

// AuthResponse is returned by register and login. The token is also set as
// an httpOnly cookie.
type AuthResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type UserProfileResponse struct {
	Id        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
