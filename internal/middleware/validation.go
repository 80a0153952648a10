package middleware

import (
	"quiz-sitting/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	ValidatedSlugKey = "validated_slug"
	validatedIDKey   = "validated_"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateSlug validates the :slug path parameter
func (vm *ValidationMiddleware) ValidateSlug() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		if errors := vm.validator.ValidateSlug(slug); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		c.Locals(ValidatedSlugKey, slug)
		return c.Next()
	}
}

// ValidateIDParams parses each named path parameter as a positive id.
func (vm *ValidationMiddleware) ValidateIDParams(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, name := range names {
			id, errors := vm.validator.ParseID(name, c.Params(name))
			if len(errors) > 0 {
				return errors
			}
			c.Locals(validatedIDKey+name, id)
		}
		return c.Next()
	}
}

// ValidatedID returns an id stored by ValidateIDParams.
func ValidatedID(c *fiber.Ctx, name string) int64 {
	id, _ := c.Locals(validatedIDKey + name).(int64)
	return id
}

// ValidatedSlug returns the slug stored by ValidateSlug.
func ValidatedSlug(c *fiber.Ctx) string {
	if slug, ok := c.Locals(ValidatedSlugKey).(string); ok {
		return slug
	}
	return c.Params("slug")
}
