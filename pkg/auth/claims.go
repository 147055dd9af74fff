// Package auth mints and verifies the HS256 access tokens handed to
// storefront clients.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
)

// AccessTokenPayload is what the auth service knows about the user when it
// issues a token. A blank JTI gets a random one.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Name   string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims is the token body. Role is copied from the user row at
// issue time and never from client input.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Name   string     `json:"name,omitempty"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claim checks during parsing.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("user_id claim is missing")
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("invalid role claim %q", c.Role)
	}
	return nil
}
