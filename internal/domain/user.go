package domain

import "time"

// User is an account that can own quizzes. PasswordHash is empty for
// accounts created through Google sign-in.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	GoogleID     string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
