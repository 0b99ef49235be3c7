package handler

import (
	"time"

	"vidquiz/internal/domain"
	"vidquiz/internal/dto"
	"vidquiz/internal/middleware"
	"vidquiz/internal/service"
	"vidquiz/internal/util"
	"vidquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const oauthStateCookie = "oauth_state"

// AuthHandler exposes registration, login, token refresh, logout, and the
// Google sign-in flow. Tokens travel in HttpOnly cookies.
type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := validation.ValidateRegister(req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Login handles POST /api/auth/login. On success the token pair is set as
// HttpOnly cookies.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := validation.ValidateLogin(req); err != nil {
		return err
	}

	user, accessToken, refreshToken, err := h.authService.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, accessToken, refreshToken)
	return c.JSON(dto.NewUserResponse(user))
}

// Refresh handles POST /api/auth/refresh: it rotates both tokens from the
// refresh cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(middleware.RefreshTokenCookie)
	if refreshToken == "" {
		return domain.NewUnauthorizedError("missing refresh token")
	}

	accessToken, newRefreshToken, err := h.authService.RefreshTokens(c.Context(), refreshToken)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, accessToken, newRefreshToken)
	return c.SendStatus(fiber.StatusNoContent)
}

// Logout handles POST /api/auth/logout by expiring both token cookies. The
// expiring cookies must carry the same paths the tokens were issued under,
// or the browser keeps the originals.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c, middleware.AccessTokenCookie, "/")
	h.clearCookie(c, middleware.RefreshTokenCookie, refreshCookiePath)
	return c.SendStatus(fiber.StatusNoContent)
}

// GoogleLogin handles GET /api/auth/google/login: it stores a CSRF state
// cookie and redirects to the Google consent screen.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	state := util.NewULID()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(h.authService.GetGoogleLoginURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/google/callback.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return domain.NewUnauthorizedError("oauth state mismatch")
	}
	h.clearCookie(c, oauthStateCookie, "/")

	code := c.Query("code")
	if code == "" {
		return domain.NewUnauthorizedError("missing authorization code")
	}

	user, accessToken, refreshToken, err := h.authService.HandleGoogleCallback(c.Context(), code)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, accessToken, refreshToken)
	return c.JSON(dto.NewUserResponse(user))
}

// refreshCookiePath scopes the refresh token to the auth endpoints so it is
// never sent with ordinary API requests.
const refreshCookiePath = "/api/auth"

func (h *AuthHandler) setTokenCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	now := time.Now()
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Expires:  now.Add(h.authService.AccessTokenTTL()),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    refreshToken,
		Expires:  now.Add(h.authService.RefreshTokenTTL()),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     refreshCookiePath,
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name, path string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     path,
	})
}
