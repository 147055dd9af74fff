// Package auth holds the /auth handlers. Each one decodes, delegates to the
// auth service and renders the envelope.
package auth

import (
	"context"
	"net/http"

	"github.com/angelmondragon/shoefinderz-backend/api/middleware"
	"github.com/angelmondragon/shoefinderz-backend/api/responses"
	"github.com/angelmondragon/shoefinderz-backend/api/validators"
	"github.com/angelmondragon/shoefinderz-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

var (
	errUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
	errNoBearer    = pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
)

// decodeAndCall is the shared shape of the body-carrying endpoints.
func decodeAndCall[Req, Resp any](svc auth.Service, logg *logger.Logger, status int, call func(context.Context, *http.Request, Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errUnavailable)
			return
		}
		var body Req
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := call(r.Context(), r, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, out)
	}
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return decodeAndCall(svc, logg, http.StatusOK, func(ctx context.Context, _ *http.Request, body types.LoginRequest) (*types.AuthResponse, error) {
		return svc.Login(ctx, body)
	})
}

// AuthSignup creates a buyer account and signs it in.
func AuthSignup(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return decodeAndCall(svc, logg, http.StatusCreated, func(ctx context.Context, _ *http.Request, body types.SignupRequest) (*types.AuthResponse, error) {
		return svc.Signup(ctx, body)
	})
}

// AuthRefresh rotates the refresh token. The bearer credential is the
// current access token, expired or not.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return decodeAndCall(svc, logg, http.StatusOK, func(ctx context.Context, r *http.Request, body types.RefreshRequest) (*types.TokenPair, error) {
		token := middleware.BearerToken(r)
		if token == "" {
			return nil, errNoBearer
		}
		return svc.Refresh(ctx, token, body.RefreshToken)
	})
}

// AuthLogout revokes the session behind the bearer token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BearerToken(r)
		switch {
		case svc == nil:
			responses.WriteError(r.Context(), logg, w, errUnavailable)
		case token == "":
			responses.WriteError(r.Context(), logg, w, errNoBearer)
		default:
			if err := svc.Logout(r.Context(), token); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteNoContent(w)
		}
	}
}
