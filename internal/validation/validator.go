package validation

import (
	"net/mail"
	"net/url"
	"strings"

	"vidquiz/internal/domain"
	"vidquiz/internal/dto"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 50
)

// ValidateVideoURL checks that raw is an absolute http(s) URL with a host.
func ValidateVideoURL(field, raw string) *domain.ValidationError {
	if strings.TrimSpace(raw) == "" {
		e := domain.NewFieldError(field, "url is required")
		return &e
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		e := domain.NewFieldError(field, "url must be a valid http(s) URL")
		return &e
	}
	return nil
}

// ValidateCreateQuiz validates the quiz creation body.
func ValidateCreateQuiz(req dto.CreateQuizRequest) error {
	if e := ValidateVideoURL("url", req.URL); e != nil {
		return domain.ValidationErrors{*e}
	}
	return nil
}

// ValidateUpdateQuiz validates the full-replacement body. The URL is
// mandatory on PUT.
func ValidateUpdateQuiz(req dto.UpdateQuizRequest) error {
	if e := ValidateVideoURL("video_url", req.VideoURL); e != nil {
		return domain.ValidationErrors{*e}
	}
	return nil
}

// ValidatePatchQuiz validates only the fields that were sent.
func ValidatePatchQuiz(req dto.PatchQuizRequest) error {
	if req.VideoURL == nil && req.Title == nil && req.Description == nil {
		return domain.ValidationErrors{domain.NewFieldError("body", "at least one field must be provided")}
	}
	if req.VideoURL != nil {
		if e := ValidateVideoURL("video_url", *req.VideoURL); e != nil {
			return domain.ValidationErrors{*e}
		}
	}
	return nil
}

// ValidateRegister validates the registration body.
func ValidateRegister(req dto.RegisterRequest) error {
	var errs domain.ValidationErrors

	username := strings.TrimSpace(req.Username)
	if username == "" {
		errs = append(errs, domain.NewFieldError("username", "username is required"))
	} else if len(username) > maxUsernameLength {
		errs = append(errs, domain.NewFieldError("username", "username is too long"))
	}

	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, domain.NewFieldError("email", "email is required"))
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, domain.NewFieldError("email", "email is not a valid address"))
	}

	if len(req.Password) < minPasswordLength {
		errs = append(errs, domain.NewFieldError("password", "password must be at least 8 characters"))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateLogin validates the login body.
func ValidateLogin(req dto.LoginRequest) error {
	var errs domain.ValidationErrors
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, domain.NewFieldError("username", "username is required"))
	}
	if req.Password == "" {
		errs = append(errs, domain.NewFieldError("password", "password is required"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
