package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidquiz/internal/config"
	"vidquiz/internal/dto"
	"vidquiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func signTestToken(t *testing.T, userID, tokenType string, ttl time.Duration) string {
	t.Helper()
	claims := dto.AuthClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedApp() *fiber.App {
	authService := service.NewAuthService(nil, config.JWTConfig{
		SecretKey:       testSecret,
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}, config.GoogleOAuthConfig{})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/protected", Protected(authService), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	return app
}

func TestProtected(t *testing.T) {
	app := protectedApp()

	t.Run("no token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("access token in cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.AddCookie(&http.Cookie{
			Name:  AccessTokenCookie,
			Value: signTestToken(t, "u1", dto.TokenTypeAccess, time.Minute),
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("access token in bearer header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "u1", dto.TokenTypeAccess, time.Minute))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("refresh token is not accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "u1", dto.TokenTypeRefresh, time.Hour))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "u1", dto.TokenTypeAccess, -time.Minute))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
