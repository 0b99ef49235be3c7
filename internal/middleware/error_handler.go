package middleware

import (
	"errors"

	"vidquiz/internal/domain"
	"vidquiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type validationErrorResponse struct {
	Code   string                   `json:"code"`
	Errors []domain.ValidationError `json:"errors"`
}

// ErrorHandler is the fiber app-level error handler. It maps domain error
// codes onto HTTP statuses and never leaks stage internals: pipeline
// failures surface as a generic 502.
func ErrorHandler(c *fiber.Ctx, err error) error {
	appLogger := logger.Get()

	var validationErrs domain.ValidationErrors
	if errors.As(err, &validationErrs) {
		return c.Status(fiber.StatusBadRequest).JSON(validationErrorResponse{
			Code:   string(domain.ErrValidation),
			Errors: validationErrs,
		})
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		status, body := mapDomainError(domainErr)
		if status >= fiber.StatusInternalServerError {
			appLogger.Error("Request failed",
				zap.String("path", c.Path()),
				zap.String("code", string(domainErr.Code)),
				zap.Error(err))
		}
		return c.Status(status).JSON(body)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "HTTP_ERROR",
			"message": fiberErr.Message,
		})
	}

	appLogger.Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    string(domain.ErrInternal),
		"message": "An internal error occurred",
	})
}

func mapDomainError(err *domain.DomainError) (int, interface{}) {
	switch err.Code {
	case domain.ErrInvalidInput, domain.ErrValidation:
		return fiber.StatusBadRequest, err
	case domain.ErrUnauthorized:
		return fiber.StatusUnauthorized, err
	case domain.ErrPermissionDenied:
		return fiber.StatusForbidden, err
	case domain.ErrNotFound, domain.ErrQuizNotFound:
		return fiber.StatusNotFound, err
	case domain.ErrDownloadFailed, domain.ErrTranscriptionFailed,
		domain.ErrGenerationFailed, domain.ErrMalformedModelOutput:
		// Stage details stay in the logs; callers only learn the upstream
		// step failed.
		return fiber.StatusBadGateway, fiber.Map{
			"code":    string(err.Code),
			"message": "Quiz generation failed; please try again later",
		}
	default:
		return fiber.StatusInternalServerError, fiber.Map{
			"code":    string(domain.ErrInternal),
			"message": "An internal error occurred",
		}
	}
}
