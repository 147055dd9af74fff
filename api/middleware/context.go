package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
)

// Principal is the caller resolved from a verified access token.
type Principal struct {
	UserID  uuid.UUID
	Role    enums.Role
	TokenID string
}

// Authenticated reports whether p names a user.
func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the zero Principal for anonymous requests.
func PrincipalFromContext(ctx context.Context) Principal {
	if ctx == nil {
		return Principal{}
	}
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}
