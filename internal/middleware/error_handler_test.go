package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"vidquiz/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return err
	})
	return app
}

func responseBody(t *testing.T, app *fiber.App) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"quiz not found", domain.NewQuizNotFoundError("q1"), fiber.StatusNotFound, "QUIZ_NOT_FOUND"},
		{"permission denied", domain.NewPermissionDeniedError("nope"), fiber.StatusForbidden, "PERMISSION_DENIED"},
		{"unauthorized", domain.NewUnauthorizedError("no token"), fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"invalid input", domain.NewInvalidInputError("bad body"), fiber.StatusBadRequest, "INVALID_INPUT"},
		{"internal", domain.NewInternalError("oops", nil), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := responseBody(t, errorApp(tt.err))
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestErrorHandler_StageErrorsAreBadGateway(t *testing.T) {
	stageErrs := []error{
		domain.NewDownloadFailedError(errors.New("yt-dlp exit 1: private video")),
		domain.NewTranscriptionFailedError(errors.New("whisper crashed")),
		domain.NewGenerationFailedError(errors.New("gemini quota exceeded")),
		domain.NewMalformedModelOutputError(errors.New("unexpected token")),
	}
	for _, stageErr := range stageErrs {
		status, body := responseBody(t, errorApp(stageErr))
		assert.Equal(t, fiber.StatusBadGateway, status)
		// Stage internals must not leak to callers.
		assert.Equal(t, "Quiz generation failed; please try again later", body["message"])
	}
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	err := domain.ValidationErrors{
		domain.NewFieldError("url", "url is required"),
		domain.NewFieldError("title", "too long"),
	}
	status, body := responseBody(t, errorApp(err))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])

	fields, ok := body["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, fields, 2)
}

func TestErrorHandler_UnknownError(t *testing.T) {
	status, body := responseBody(t, errorApp(errors.New("driver: bad connection")))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.NotContains(t, body["message"], "driver")
}

func TestErrorHandler_FiberError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
