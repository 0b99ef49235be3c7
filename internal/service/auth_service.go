package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vidquiz/internal/config"
	"vidquiz/internal/domain"
	"vidquiz/internal/dto"
	"vidquiz/internal/logger"
	"vidquiz/internal/repository"
	"vidquiz/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthService handles registration, credential login, token lifecycle, and
// Google sign-in.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, string, error)
	ValidateJWT(tokenString string) (*dto.AuthClaims, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	GetGoogleLoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string) (*domain.User, string, string, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

type authService struct {
	userRepo    repository.UserRepository
	jwtCfg      config.JWTConfig
	oauthConfig *oauth2.Config
	httpClient  *http.Client
}

// NewAuthService creates the auth service.
func NewAuthService(userRepo repository.UserRepository, jwtCfg config.JWTConfig, oauthCfg config.GoogleOAuthConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
		oauthConfig: &oauth2.Config{
			ClientID:     oauthCfg.ClientID,
			ClientSecret: oauthCfg.ClientSecret,
			RedirectURL:  oauthCfg.RedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *authService) AccessTokenTTL() time.Duration  { return s.jwtCfg.AccessTokenTTL }
func (s *authService) RefreshTokenTTL() time.Duration { return s.jwtCfg.RefreshTokenTTL }

// Register creates a credential-backed account. Username and email must be
// unique; collisions surface as field-level validation errors.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	var fieldErrs domain.ValidationErrors

	existing, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		fieldErrs = append(fieldErrs, domain.NewFieldError("username", "username is already taken"))
	}

	existing, err = s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		fieldErrs = append(fieldErrs, domain.NewFieldError("email", "email is already registered"))
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}

	user := &domain.User{
		ID:           util.NewULID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Get().Info("User registered", zap.String("userID", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair. A
// wrong username and a wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, username, password string) (*domain.User, string, string, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", "", err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, "", "", domain.NewUnauthorizedError("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", domain.NewUnauthorizedError("invalid username or password")
	}

	accessToken, refreshToken, err := s.issueTokenPair(user.ID)
	if err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

func (s *authService) issueTokenPair(userID string) (string, string, error) {
	accessToken, err := s.createJWT(userID, dto.TokenTypeAccess, s.jwtCfg.AccessTokenTTL)
	if err != nil {
		return "", "", domain.NewInternalError("failed to sign access token", err)
	}
	refreshToken, err := s.createJWT(userID, dto.TokenTypeRefresh, s.jwtCfg.RefreshTokenTTL)
	if err != nil {
		return "", "", domain.NewInternalError("failed to sign refresh token", err)
	}
	return accessToken, refreshToken, nil
}

func (s *authService) createJWT(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.SecretKey))
}

// ValidateJWT parses and verifies a token of either type. Callers check
// TokenType themselves.
func (s *authService) ValidateJWT(tokenString string) (*dto.AuthClaims, error) {
	claims := &dto.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.NewUnauthorizedError("invalid or expired token")
	}
	return claims, nil
}

// RefreshTokens rotates the token pair. Only a refresh-type token is
// accepted; the matching user must still exist.
func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.ValidateJWT(refreshToken)
	if err != nil {
		return "", "", err
	}
	if claims.TokenType != dto.TokenTypeRefresh {
		return "", "", domain.NewUnauthorizedError("token is not a refresh token")
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return "", "", err
	}
	if user == nil {
		return "", "", domain.NewUnauthorizedError("user no longer exists")
	}

	return s.issueTokenPair(user.ID)
}

// GetGoogleLoginURL builds the consent-screen URL for the given CSRF state.
func (s *authService) GetGoogleLoginURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleGoogleCallback exchanges the authorization code, resolves the
// Google identity to a local user (creating one on first sign-in), and
// issues a token pair.
func (s *authService) HandleGoogleCallback(ctx context.Context, code string) (*domain.User, string, string, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, "", "", domain.NewUnauthorizedError("failed to exchange authorization code")
	}

	info, err := s.fetchGoogleUserInfo(ctx, token)
	if err != nil {
		return nil, "", "", domain.NewInternalError("failed to fetch google profile", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, "", "", domain.NewInternalError("google profile is missing id or email", nil)
	}

	user, err := s.findOrCreateGoogleUser(ctx, info)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := s.issueTokenPair(user.ID)
	if err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

func (s *authService) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	client.Timeout = s.httpClient.Timeout

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, string(body))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *authService) findOrCreateGoogleUser(ctx context.Context, info *googleUserInfo) (*domain.User, error) {
	user, err := s.userRepo.GetUserByGoogleID(ctx, info.ID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	// Link by email when an account already exists with classic credentials.
	user, err = s.userRepo.GetUserByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		user.GoogleID = info.ID
		if user.Name == "" {
			user.Name = info.Name
		}
		if err := s.userRepo.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user = &domain.User{
		ID:       util.NewULID(),
		Username: googleUsername(info.Email),
		Email:    info.Email,
		GoogleID: info.ID,
		Name:     info.Name,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Get().Info("User created via google sign-in", zap.String("userID", user.ID))
	return user, nil
}

// googleUsername derives a username from the email local part, suffixed
// with a ULID fragment to dodge collisions.
func googleUsername(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	suffix := util.NewULID()
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return fmt.Sprintf("%s_%s", strings.ToLower(local), strings.ToLower(suffix))
}
