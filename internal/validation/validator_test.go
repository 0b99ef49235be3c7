package validation

import (
	"testing"

	"vidquiz/internal/domain"
	"vidquiz/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreateQuiz(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https url", "https://videos.example.com/watch?v=abc", false},
		{"http url", "http://videos.example.com/v/abc", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"no scheme", "videos.example.com/watch", true},
		{"ftp scheme", "ftp://example.com/file", true},
		{"scheme without host", "https://", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateQuiz(dto.CreateQuizRequest{URL: tt.url})
			if tt.wantErr {
				var fieldErrs domain.ValidationErrors
				require.ErrorAs(t, err, &fieldErrs)
				assert.Equal(t, "url", fieldErrs[0].Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePatchQuiz(t *testing.T) {
	t.Run("empty body is rejected", func(t *testing.T) {
		err := ValidatePatchQuiz(dto.PatchQuizRequest{})
		assert.Error(t, err)
	})

	t.Run("title-only patch is fine", func(t *testing.T) {
		title := "New Title"
		assert.NoError(t, ValidatePatchQuiz(dto.PatchQuizRequest{Title: &title}))
	})

	t.Run("present but invalid url is rejected", func(t *testing.T) {
		bad := "not-a-url"
		assert.Error(t, ValidatePatchQuiz(dto.PatchQuizRequest{VideoURL: &bad}))
	})
}

func TestValidateRegister(t *testing.T) {
	valid := dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenough",
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateRegister(valid))
	})

	t.Run("all fields missing reports every failure", func(t *testing.T) {
		err := ValidateRegister(dto.RegisterRequest{})
		var fieldErrs domain.ValidationErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Len(t, fieldErrs, 3)
	})

	t.Run("short password", func(t *testing.T) {
		req := valid
		req.Password = "short"
		err := ValidateRegister(req)
		var fieldErrs domain.ValidationErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, "password", fieldErrs[0].Field)
	})

	t.Run("bad email", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		assert.Error(t, ValidateRegister(req))
	})
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin(dto.LoginRequest{Username: "alice", Password: "pw"}))
	assert.Error(t, ValidateLogin(dto.LoginRequest{Username: "", Password: "pw"}))
	assert.Error(t, ValidateLogin(dto.LoginRequest{Username: "alice", Password: ""}))
}
