package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

type stubAuthService struct {
	login       types.LoginRequest
	signup      types.SignupRequest
	refreshArgs [2]string
	loggedOut   string
	err         error
}

func (s *stubAuthService) response(name, identifier string) *types.AuthResponse {
	return &types.AuthResponse{
		Success:      true,
		User:         types.SessionUser{ID: uuid.New(), Name: name, Identifier: identifier, Role: enums.RoleBuyer},
		AccessToken:  "access",
		RefreshToken: "refresh",
	}
}

func (s *stubAuthService) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	s.login = req
	if s.err != nil {
		return nil, s.err
	}
	return s.response("Asha", req.Identifier), nil
}

func (s *stubAuthService) Signup(ctx context.Context, req types.SignupRequest) (*types.AuthResponse, error) {
	s.signup = req
	if s.err != nil {
		return nil, s.err
	}
	return s.response(req.Name, req.Identifier), nil
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*types.TokenPair, error) {
	s.refreshArgs = [2]string{accessToken, refreshToken}
	if s.err != nil {
		return nil, s.err
	}
	return &types.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.loggedOut = accessToken
	return s.err
}

func TestAuthLogin(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"identifier":"9876543210","password":"secret"}`))
	rec := httptest.NewRecorder()
	AuthLogin(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "9876543210", svc.login.Identifier)
	assert.Contains(t, rec.Body.String(), `"role":"buyer"`)
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"identifier":"9876543210","password":"wrong"}`))
	rec := httptest.NewRecorder()
	AuthLogin(svc, logger.Nop()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestAuthSignup(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(`{"name":"Asha","identifier":"9876543210","password":"longenough"}`))
	rec := httptest.NewRecorder()
	AuthSignup(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Asha", svc.signup.Name)

	short := httptest.NewRecorder()
	AuthSignup(svc, logger.Nop()).ServeHTTP(short, httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(`{"name":"Asha","identifier":"9876543210","password":"short"}`)))
	assert.Equal(t, http.StatusBadRequest, short.Code)
}

func TestAuthRefresh(t *testing.T) {
	svc := &stubAuthService{}

	missing := httptest.NewRecorder()
	AuthRefresh(svc, logger.Nop()).ServeHTTP(missing, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"r"}`)))
	assert.Equal(t, http.StatusUnauthorized, missing.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"refresh"}`))
	req.Header.Set("Authorization", "Bearer expired-access")
	rec := httptest.NewRecorder()
	AuthRefresh(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]string{"expired-access", "refresh"}, svc.refreshArgs)
	assert.Contains(t, rec.Body.String(), `"access_token":"access-2"`)
}

func TestAuthLogout(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer access")
	rec := httptest.NewRecorder()
	AuthLogout(svc, logger.Nop()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "access", svc.loggedOut)
}
