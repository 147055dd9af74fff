package types

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
)

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=32"`
	Password   string `json:"password" validate:"required,max=256"`
}

type SignupRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Identifier string `json:"identifier" validate:"required,max=32"`
	Password   string `json:"password" validate:"required,min=8,max=256"`
}

// RefreshRequest accompanies the possibly expired access token sent as the
// bearer credential.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionUser is the user object returned on login/signup.
type SessionUser struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Identifier string     `json:"identifier"`
	Role       enums.Role `json:"role"`
}

type AuthResponse struct {
	Success      bool        `json:"success"`
	User         SessionUser `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}
