package middleware

import (
	"errors"
	"net/http"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse lists every field that failed.
type ValidationErrorResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Status  int                      `json:"status"`
	Errors  []domain.ValidationError `json:"errors"`
}

var statusByCode = map[domain.ErrorCode]int{
	domain.CodeNotFound:          http.StatusNotFound,
	domain.CodeQuizNotFound:      http.StatusNotFound,
	domain.CodeInvalidInput:      http.StatusBadRequest,
	domain.CodeInvalidAnswer:     http.StatusBadRequest,
	domain.CodeValidation:        http.StatusBadRequest,
	domain.CodeMissingField:      http.StatusBadRequest,
	domain.CodeInvalidFormat:     http.StatusBadRequest,
	domain.CodeOutOfRange:        http.StatusBadRequest,
	domain.CodeUnauthorized:      http.StatusUnauthorized,
	domain.CodeForbidden:         http.StatusForbidden,
	domain.CodeAttemptNotAllowed: http.StatusForbidden,
	domain.CodeConflict:          http.StatusConflict,
	domain.CodeLLMServiceError:   http.StatusServiceUnavailable,
}

// statusFor maps a domain error code to its HTTP status; unknown codes are 500.
func statusFor(code domain.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorHandler turns every error a handler returns into a JSON body.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			return writeValidation(c, validationErrs)
		}

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return writeDomain(c, domainErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			logger.Get().Warn("Fiber error occurred",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("code", fiberErr.Code),
			)
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		logger.Get().Error("Unknown error occurred",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    string(domain.CodeInternal),
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		})
	}
}

func writeValidation(c *fiber.Ctx, errs domain.ValidationErrors) error {
	logger.Get().Warn("Validation errors occurred",
		zap.String("path", c.Path()),
		zap.Int("error_count", len(errs)),
	)
	return c.Status(http.StatusBadRequest).JSON(ValidationErrorResponse{
		Code:    string(domain.CodeValidation),
		Message: "Request validation failed",
		Status:  http.StatusBadRequest,
		Errors:  errs,
	})
}

func writeDomain(c *fiber.Ctx, err *domain.DomainError) error {
	status := statusFor(err.Code)

	fields := []zap.Field{
		zap.String("path", c.Path()),
		zap.String("code", string(err.Code)),
		zap.String("message", err.Message),
		zap.Int("status", status),
		zap.Error(err.Cause),
	}
	if status >= http.StatusInternalServerError {
		logger.Get().Error("Domain error occurred", fields...)
	} else {
		logger.Get().Warn("Domain error occurred", fields...)
	}

	response := ErrorResponse{
		Code:    string(err.Code),
		Message: err.Message,
		Status:  status,
	}
	for k, v := range err.Context {
		if response.Details == nil {
			response.Details = make(map[string]interface{}, len(err.Context)+1)
		}
		response.Details[k] = v
	}
	// A lost optimistic update succeeds on a plain retry.
	if errors.Is(err.Cause, domain.ErrConcurrentUpdate) {
		if response.Details == nil {
			response.Details = map[string]interface{}{}
		}
		response.Details["retryable"] = true
	}
	return c.Status(status).JSON(response)
}
