package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidquiz/internal/domain"
	"vidquiz/internal/dto"
	"vidquiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*domain.User, string, string, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*domain.User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockAuthService) ValidateJWT(tokenString string) (*dto.AuthClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthClaims), args.Error(1)
}

func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) GetGoogleLoginURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockAuthService) HandleGoogleCallback(ctx context.Context, code string) (*domain.User, string, string, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*domain.User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockAuthService) AccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (m *MockAuthService) RefreshTokenTTL() time.Duration { return 7 * 24 * time.Hour }

func authApp(svc *MockAuthService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})

	h := NewAuthHandler(svc)
	auth := app.Group("/api/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/logout", h.Logout)
	return app
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login_SetsTokenCookies(t *testing.T) {
	svc := &MockAuthService{}
	svc.On("Login", mock.Anything, "alice", "hunter2hunter2").
		Return(&domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}, "access-jwt", "refresh-jwt", nil)

	body, err := json.Marshal(dto.LoginRequest{Username: "alice", Password: "hunter2hunter2"})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := authApp(svc).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookies := resp.Cookies()
	access := cookieByName(cookies, middleware.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, "access-jwt", access.Value)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)

	refresh := cookieByName(cookies, middleware.RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-jwt", refresh.Value)
	assert.Equal(t, "/api/auth", refresh.Path, "refresh token is scoped to the auth endpoints")
	assert.True(t, refresh.HttpOnly)
}

func TestAuthHandler_Logout_ExpiresCookiesOnIssuedPaths(t *testing.T) {
	svc := &MockAuthService{}

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	resp, err := authApp(svc).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	cookies := resp.Cookies()

	access := cookieByName(cookies, middleware.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.Expires.Before(time.Now()))

	// The browser only drops the refresh cookie when the expiring cookie
	// matches the path it was issued under.
	refresh := cookieByName(cookies, middleware.RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Empty(t, refresh.Value)
	assert.Equal(t, "/api/auth", refresh.Path)
	assert.True(t, refresh.Expires.Before(time.Now()))
}

func TestAuthHandler_Refresh_RotatesCookies(t *testing.T) {
	svc := &MockAuthService{}
	svc.On("RefreshTokens", mock.Anything, "old-refresh").Return("new-access", "new-refresh", nil)

	req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: "old-refresh"})

	resp, err := authApp(svc).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	refresh := cookieByName(resp.Cookies(), middleware.RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, "new-refresh", refresh.Value)
	assert.Equal(t, "/api/auth", refresh.Path)
}

func TestAuthHandler_Refresh_MissingCookie(t *testing.T) {
	svc := &MockAuthService{}

	req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
	resp, err := authApp(svc).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	svc.AssertNotCalled(t, "RefreshTokens", mock.Anything, mock.Anything)
}
