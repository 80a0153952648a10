package domain

import (
	"regexp"
	"strings"
	"time"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeCategoryName turns free text into a canonical category key:
// surrounding whitespace dropped, inner runs collapsed to one hyphen, lower-cased.
// Progress ledgers match on this key, so every category must be created through it.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "-"))
}

// Category represents a quiz category
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// NewCategory creates a new Category with a normalized key
func NewCategory(name string) *Category {
	return &Category{
		Name:      NormalizeCategoryName(name),
		CreatedAt: time.Now(),
	}
}

// Validate validates the category
func (c *Category) Validate() error {
	if c.Name == "" {
		return ValidationErrors{NewMissingFieldError("category")}
	}
	if len(c.Name) > 250 {
		return ValidationErrors{NewOutOfRangeError("category", len(c.Name), 1, 250)}
	}
	// commas delimit the progress ledger
	if strings.Contains(c.Name, ",") {
		return ValidationErrors{NewInvalidFormatError("category", c.Name)}
	}
	return nil
}

func (c *Category) String() string {
	return c.Name
}

// SubCategory represents a subcategory, optionally owned by a category
type SubCategory struct {
	ID         int64
	CategoryID *int64
	Name       string
	CreatedAt  time.Time
}

// NewSubCategory creates a new SubCategory with a normalized key
func NewSubCategory(name string, categoryID *int64) *SubCategory {
	return &SubCategory{
		CategoryID: categoryID,
		Name:       NormalizeCategoryName(name),
		CreatedAt:  time.Now(),
	}
}

// Validate validates the subcategory
func (s *SubCategory) Validate() error {
	if s.Name == "" {
		return ValidationErrors{NewMissingFieldError("sub_category")}
	}
	if len(s.Name) > 250 {
		return ValidationErrors{NewOutOfRangeError("sub_category", len(s.Name), 1, 250)}
	}
	return nil
}
