package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores an ordered list of strings as a JSON document in a
// text/CLOB column.
type StringSlice []string

// Value implements the driver.Valuer interface.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}

	return json.Unmarshal(bytesToParse, s)
}

// User represents a row in the users table.
type User struct {
	ID           string         `db:"ID"` // ULID
	Username     string         `db:"USERNAME"`
	Email        string         `db:"EMAIL"`
	PasswordHash sql.NullString `db:"PASSWORD_HASH"` // NULL for OAuth-only accounts
	GoogleID     sql.NullString `db:"GOOGLE_ID"`
	Name         sql.NullString `db:"NAME"`
	CreatedAt    time.Time      `db:"CREATED_AT"`
	UpdatedAt    time.Time      `db:"UPDATED_AT"`
	DeletedAt    sql.NullTime   `db:"DELETED_AT"`
}

// Quiz represents a row in the quizzes table. Title and description are
// NULL until the generation pipeline has completed once.
type Quiz struct {
	ID          string         `db:"ID"` // ULID
	CreatorID   string         `db:"CREATOR_ID"`
	VideoURL    string         `db:"VIDEO_URL"`
	Title       sql.NullString `db:"TITLE"`
	Description sql.NullString `db:"DESCRIPTION"`
	CreatedAt   time.Time      `db:"CREATED_AT"`
	UpdatedAt   time.Time      `db:"UPDATED_AT"`
}

// Question represents a row in the questions table. Rows are only written
// as a whole batch per quiz; they are deleted together with their quiz.
type Question struct {
	ID            string      `db:"ID"` // ULID
	QuizID        string      `db:"QUIZ_ID"`
	QuestionTitle string      `db:"QUESTION_TITLE"`
	Options       StringSlice `db:"QUESTION_OPTIONS"`
	Answer        string      `db:"ANSWER"`
	CreatedAt     time.Time   `db:"CREATED_AT"`
	UpdatedAt     time.Time   `db:"UPDATED_AT"`
}
