package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuestionKind is the variant tag stored with every question row.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindTrueFalse      QuestionKind = "true_false"
	KindEssay          QuestionKind = "essay"
)

// ParseQuestionKind validates a stored or submitted kind tag.
func ParseQuestionKind(s string) (QuestionKind, error) {
	switch k := QuestionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindMultipleChoice, KindTrueFalse, KindEssay:
		return k, nil
	default:
		return "", fmt.Errorf("unknown question kind %q", s)
	}
}

// QuestionBase holds what every variant shares.
type QuestionBase struct {
	ID            int64
	QuizID        int64
	CategoryID    *int64
	SubCategoryID *int64
	// CategoryName is the category key resolved at load time, empty when unset.
	CategoryName string
	Figure       string
	Content      string
	Explanation  string
	CreatedAt    time.Time
}

func (b *QuestionBase) Base() *QuestionBase { return b }

// AnswerView is one displayable answer with its correctness.
type AnswerView struct {
	ID      int64  `json:"id,omitempty"`
	Content string `json:"content"`
	Correct bool   `json:"correct"`
}

// AnswerChoice is a (value, label) pair offered to the taker.
type AnswerChoice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question is implemented by every concrete variant. Callers must hold the
// resolved variant: there is no shared default for these operations.
type Question interface {
	Base() *QuestionBase
	Kind() QuestionKind
	CheckIfCorrect(guess string) bool
	// Answers returns nil for variants without stored answers.
	Answers() []AnswerView
	// AnswersList returns nil for variants without selectable choices.
	AnswersList() []AnswerChoice
	AnswerChoiceToString(guess string) string
}

// Validate validates the common part of a question.
func (b *QuestionBase) Validate() ValidationErrors {
	var errs ValidationErrors
	if b.QuizID == 0 {
		errs = append(errs, NewMissingFieldError("quiz_id"))
	}
	if strings.TrimSpace(b.Content) == "" {
		errs = append(errs, NewMissingFieldError("content"))
	} else if len(b.Content) > 1000 {
		errs = append(errs, NewOutOfRangeError("content", len(b.Content), 1, 1000))
	}
	if len(b.Explanation) > 2000 {
		errs = append(errs, NewOutOfRangeError("explanation", len(b.Explanation), 0, 2000))
	}
	return errs
}

// ValidateQuestion runs the base checks plus the variant specific ones.
func ValidateQuestion(q Question) error {
	errs := q.Base().Validate()
	if mc, ok := q.(*MultipleChoiceQuestion); ok {
		errs = append(errs, mc.validateAnswers()...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// HasStoredAnswers reports whether the variant can reveal a correct answer.
func HasStoredAnswers(q Question) bool {
	return q.Kind() != KindEssay
}
