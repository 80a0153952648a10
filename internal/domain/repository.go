package domain

import (
	"context"
)

// Repositories return (nil, nil) when a row does not exist.

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// GetAllCategories returns all categories ordered by name
	GetAllCategories(ctx context.Context) ([]*Category, error)

	// GetCategoryByName looks a category up by its normalized key
	GetCategoryByName(ctx context.Context, name string) (*Category, error)

	// SaveCategory persists a new category and sets its ID
	SaveCategory(ctx context.Context, category *Category) error

	// GetSubCategories returns the subcategories owned by a category
	GetSubCategories(ctx context.Context, categoryID int64) ([]*SubCategory, error)

	// GetSubCategoryByName looks a subcategory up by its normalized key
	GetSubCategoryByName(ctx context.Context, name string) (*SubCategory, error)

	// SaveSubCategory persists a new subcategory and sets its ID
	SaveSubCategory(ctx context.Context, subCategory *SubCategory) error
}

// QuizRepository defines the interface for quiz persistence
type QuizRepository interface {
	GetQuizByID(ctx context.Context, id int64) (*Quiz, error)
	GetQuizBySlug(ctx context.Context, slug string) (*Quiz, error)
	ListQuizzes(ctx context.Context, filter QuizFilter) ([]*Quiz, error)
	SaveQuiz(ctx context.Context, quiz *Quiz) error
	UpdateQuiz(ctx context.Context, quiz *Quiz) error
	DeleteQuiz(ctx context.Context, id int64) error
}

// QuestionRepository stores questions of every kind and loads the concrete variant.
type QuestionRepository interface {
	GetQuestionByID(ctx context.Context, id int64) (Question, error)
	// GetQuestionsByIDs skips ids that do not exist; order is unspecified.
	GetQuestionsByIDs(ctx context.Context, ids []int64) ([]Question, error)
	// GetQuestionIDsByQuiz returns the quiz's question ids in insertion order.
	GetQuestionIDsByQuiz(ctx context.Context, quizID int64) ([]int64, error)
	CountQuestionsByQuiz(ctx context.Context, quizID int64) (int, error)
	// SaveQuestion persists the question and, for multiple choice, its answers.
	SaveQuestion(ctx context.Context, q Question) error
}

// SittingRepository defines the interface for sitting persistence
type SittingRepository interface {
	GetSittingByID(ctx context.Context, id int64) (*Sitting, error)
	// FindIncompleteSittings returns every incomplete sitting of the pair, lowest id first.
	FindIncompleteSittings(ctx context.Context, userID string, quizID int64) ([]*Sitting, error)
	HasCompletedSitting(ctx context.Context, userID string, quizID int64) (bool, error)
	ListCompletedSittings(ctx context.Context, filter SittingFilter) ([]*Sitting, error)
	// CreateSitting inserts the sitting and sets its ID and Version.
	CreateSitting(ctx context.Context, s *Sitting) error
	// UpdateSitting writes the sitting if its Version is still current and
	// bumps Version. A stale Version yields ErrConcurrentUpdate.
	UpdateSitting(ctx context.Context, s *Sitting) error
	DeleteSitting(ctx context.Context, id int64) error
}

// ProgressRepository defines the interface for progress persistence
type ProgressRepository interface {
	GetProgressByUser(ctx context.Context, userID string) (*Progress, error)
	CreateProgress(ctx context.Context, p *Progress) error
	// UpdateProgress follows the same versioning rules as UpdateSitting.
	UpdateProgress(ctx context.Context, p *Progress) error
}

// TransactionManager runs fn in one database transaction. Repositories called
// with the ctx handed to fn join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MarkingSuggestion is an assistant's opinion on an essay answer.
type MarkingSuggestion struct {
	Correct    bool    `json:"correct"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// EssayMarkingAssistant proposes a verdict for an essay answer. It never
// changes a sitting by itself.
type EssayMarkingAssistant interface {
	SuggestMark(ctx context.Context, question, explanation, answer string) (*MarkingSuggestion, error)
}
