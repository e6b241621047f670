package dto

import (
	md "github.com/ndavydov/auth-sessions/internal/models"
	"github.com/google/uuid"
)

type DeviceRequest struct {
	ID uuid.UUID `json:"id"`
	IP string    `json:"ip"`
	UA string    `json:"ua"`
}

type SignUpRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type EmailAndPasswordRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AuthResponse struct {
	User *md.User  `json:"user"`
	Pair TokenPair `json:"-"`
}

type CSRFResponse struct {
	Token string `json:"token"`
}
