package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrValidation   ErrorCode = "VALIDATION_FAILED"

	// Quiz specific errors
	ErrQuizNotFound     ErrorCode = "QUIZ_NOT_FOUND"
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED"

	// Pipeline stage errors
	ErrDownloadFailed       ErrorCode = "DOWNLOAD_FAILED"
	ErrTranscriptionFailed  ErrorCode = "TRANSCRIPTION_FAILED"
	ErrGenerationFailed     ErrorCode = "GENERATION_FAILED"
	ErrMalformedModelOutput ErrorCode = "MALFORMED_MODEL_OUTPUT"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper constructors for common errors

func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(ErrUnauthorized, message, nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(ErrQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

func NewPermissionDeniedError(message string) *DomainError {
	return NewError(ErrPermissionDenied, message, nil)
}

func NewDownloadFailedError(err error) *DomainError {
	return NewError(ErrDownloadFailed, "Failed to download audio from source", err)
}

func NewTranscriptionFailedError(err error) *DomainError {
	return NewError(ErrTranscriptionFailed, "Failed to transcribe audio", err)
}

func NewGenerationFailedError(err error) *DomainError {
	return NewError(ErrGenerationFailed, "Failed to generate quiz content", err)
}

func NewMalformedModelOutputError(err error) *DomainError {
	return NewError(ErrMalformedModelOutput, "Model output could not be decoded", err)
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field-level validation failures so a request
// can report all of them at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", e[0].Error())
}

func NewFieldError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}
