package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/shoefinderz-backend/pkg/db/models"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

// NewUser is an account about to be persisted. Phone must already be
// normalized and PasswordHash encoded; an invalid Role falls back to buyer.
type NewUser struct {
	Name         string
	Phone        string
	PasswordHash string
	Role         enums.Role
}

func (n NewUser) row(now time.Time) *models.User {
	if !n.Role.IsValid() {
		n.Role = enums.RoleBuyer
	}
	return &models.User{
		ID:           uuid.New(),
		Name:         n.Name,
		Phone:        n.Phone,
		PasswordHash: n.PasswordHash,
		Role:         n.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Session projects the account onto the credential-free shape the
// storefront keeps after login. A nil user yields the zero value.
func Session(u *models.User) types.SessionUser {
	if u == nil {
		return types.SessionUser{}
	}
	return types.SessionUser{ID: u.ID, Name: u.Name, Identifier: u.Phone, Role: u.Role}
}
