package validation

import (
	"regexp"
	"strconv"
	"strings"

	"quiz-sitting/internal/domain"
)

const (
	maxSlugLength  = 60
	maxGuessLength = 2000
)

var validSlug = regexp.MustCompile(`^[\p{L}\p{N}-]+$`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSlug validates a quiz url path segment
func (v *Validator) ValidateSlug(slug string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(slug) == "" {
		errors = append(errors, domain.NewMissingFieldError("slug"))
		return errors
	}
	if len(slug) > maxSlugLength {
		errors = append(errors, domain.NewOutOfRangeError("slug", len(slug), 1, maxSlugLength))
	} else if !validSlug.MatchString(slug) {
		errors = append(errors, domain.NewInvalidFormatError("slug", slug))
	}
	return errors
}

// ParseID parses a positive numeric identifier
func (v *Validator) ParseID(field, raw string) (int64, domain.ValidationErrors) {
	if strings.TrimSpace(raw) == "" {
		return 0, domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError(field, raw)}
	}
	return id, nil
}

// ValidateGuess validates a submitted answer
func (v *Validator) ValidateGuess(guess string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(guess) == "" {
		errors = append(errors, domain.NewMissingFieldError("guess"))
	} else if len(guess) > maxGuessLength {
		errors = append(errors, domain.NewOutOfRangeError("guess", len(guess), 1, maxGuessLength))
	}
	return errors
}
