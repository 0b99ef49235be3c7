package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vidquiz/internal/domain"
	"vidquiz/internal/repository/models"
	"vidquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	u := &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash.String,
		GoogleID:     m.GoogleID.String,
		Name:         m.Name.String,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		u.DeletedAt = &t
	}
	return u
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	m := &models.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: util.StringToNullString(u.PasswordHash),
		GoogleID:     util.StringToNullString(u.GoogleID),
		Name:         util.StringToNullString(u.Name),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.DeletedAt != nil {
		m.DeletedAt = util.TimeToNullTime(*u.DeletedAt)
	}
	return m
}

// CreateUser inserts a new user into the database.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, google_id, name, created_at, updated_at)
	          VALUES (:id, :username, :email, :password_hash, :google_id, :name, :created_at, :updated_at)`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, fromDomainUser(user)); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) getBy(ctx context.Context, query string, args map[string]interface{}) (*domain.User, error) {
	executor := GetExecutor(ctx, r.db)

	stmt, err := executor.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare user query: %w", err)
	}
	defer stmt.Close()

	var user models.User
	if err := stmt.GetContext(ctx, &user, args); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // not found; services decide how to report it
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(&user), nil
}

// GetUserByID retrieves a user by their internal ID.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT * FROM users WHERE id = :id AND deleted_at IS NULL`
	return r.getBy(ctx, query, map[string]interface{}{"id": userID})
}

// GetUserByUsername retrieves a user by username.
func (r *sqlxUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT * FROM users WHERE username = :username AND deleted_at IS NULL`
	return r.getBy(ctx, query, map[string]interface{}{"username": username})
}

// GetUserByEmail retrieves a user by email.
func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT * FROM users WHERE email = :email AND deleted_at IS NULL`
	return r.getBy(ctx, query, map[string]interface{}{"email": email})
}

// GetUserByGoogleID retrieves a user by their Google ID.
func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	query := `SELECT * FROM users WHERE google_id = :google_id AND deleted_at IS NULL`
	return r.getBy(ctx, query, map[string]interface{}{"google_id": googleID})
}

// UpdateUser updates an existing user's mutable fields.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()

	query := `UPDATE users SET
	            email = :email,
	            name = :name,
	            google_id = :google_id,
	            password_hash = :password_hash,
	            updated_at = :updated_at
	          WHERE id = :id AND deleted_at IS NULL`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, fromDomainUser(user))
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
