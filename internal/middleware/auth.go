package middleware

import (
	"strings"

	"vidquiz/internal/domain"
	"vidquiz/internal/dto"
	"vidquiz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by Protected.
const (
	UserIDKey = "userID"
)

// AccessTokenCookie is the cookie the browser flow stores the access token
// in; API clients may send a Bearer header instead.
const AccessTokenCookie = "access_token"

// RefreshTokenCookie holds the refresh token for the /auth/refresh route.
const RefreshTokenCookie = "refresh_token"

// Protected rejects requests without a valid access token and stores the
// authenticated user id in the request locals.
func Protected(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return domain.NewUnauthorizedError("missing access token")
		}

		claims, err := authService.ValidateJWT(tokenString)
		if err != nil {
			return err
		}
		if claims.TokenType != dto.TokenTypeAccess {
			return domain.NewUnauthorizedError("token is not an access token")
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
		return cookie
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// UserID returns the authenticated user id set by Protected.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(UserIDKey).(string); ok {
		return id
	}
	return ""
}
