package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/shoefinderz-backend/api/responses"
	pkgAuth "github.com/angelmondragon/shoefinderz-backend/pkg/auth"
	"github.com/angelmondragon/shoefinderz-backend/pkg/auth/session"
	"github.com/angelmondragon/shoefinderz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
)

// Auth requires a bearer access token whose session is still live and puts
// the caller's Principal on the request context. A nil verifier skips the
// session lookup.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller, err := authenticate(ctx, cfg, verifier, BearerToken(r))
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			ctx = WithPrincipal(ctx, caller)
			if logg != nil {
				ctx = logg.WithRole(logg.WithUserID(ctx, caller.UserID.String()), string(caller.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, verifier session.AccessSessionChecker, token string) (Principal, error) {
	if token == "" {
		return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return Principal{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if verifier != nil {
		live, err := verifier.HasSession(ctx, claims.ID)
		if err != nil {
			return Principal{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !live {
			return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}
	return Principal{UserID: claims.UserID, Role: claims.Role, TokenID: claims.ID}, nil
}

// BearerToken returns the Authorization header value without its Bearer
// scheme. Other values are returned trimmed as-is.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, rest, found := strings.Cut(raw, " ")
	if found && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return raw
}
