package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	MaxPassMark    = 100
	maxTitleLength = 60
	maxSlugLength  = 60
)

// Quiz is the configuration of one set of questions.
type Quiz struct {
	ID            int64
	Title         string
	Description   string
	URL           string // slug, see NormalizeSlug
	CategoryID    *int64
	RandomOrder   bool
	MaxQuestions  int // 0 means every question is asked
	AnswersAtEnd  bool
	ExamPaper     bool
	SingleAttempt bool
	PassMark      int
	SuccessText   string
	FailText      string
	Draft         bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NormalizeSlug lower-cases s, turns whitespace runs into hyphens and drops
// everything that is not a letter, a digit or a hyphen.
func NormalizeSlug(s string) string {
	hyphenated := strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "-"))
	var b strings.Builder
	for _, r := range hyphenated {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Prepare runs the save-time rules: it re-derives the slug, forces exam
// papers for single-attempt quizzes and validates the result.
// A non-nil error means the quiz must not be persisted.
func (q *Quiz) Prepare() error {
	if strings.TrimSpace(q.URL) == "" {
		q.URL = q.Title
	}
	q.URL = NormalizeSlug(q.URL)

	if q.SingleAttempt {
		q.ExamPaper = true
	}

	return q.Validate()
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	var errs ValidationErrors

	title := strings.TrimSpace(q.Title)
	if title == "" {
		errs = append(errs, NewMissingFieldError("title"))
	} else if len(title) > maxTitleLength {
		errs = append(errs, NewOutOfRangeError("title", len(title), 1, maxTitleLength))
	}

	if q.URL == "" {
		errs = append(errs, NewMissingFieldError("url"))
	} else if len(q.URL) > maxSlugLength {
		errs = append(errs, NewOutOfRangeError("url", len(q.URL), 1, maxSlugLength))
	}

	if q.PassMark > MaxPassMark {
		errs = append(errs, ValidationError{
			Field:   "pass_mark",
			Code:    CodeOutOfRange,
			Message: fmt.Sprintf("%d is above %d", q.PassMark, MaxPassMark),
			Value:   q.PassMark,
		})
	} else if q.PassMark < 0 {
		errs = append(errs, NewOutOfRangeError("pass_mark", q.PassMark, 0, MaxPassMark))
	}

	if q.MaxQuestions < 0 {
		errs = append(errs, NewValidationError("max_questions", "max_questions must not be negative"))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ResultMessage returns the text shown at the end of a sitting.
func (q *Quiz) ResultMessage(passed bool) string {
	if passed {
		return q.SuccessText
	}
	return q.FailText
}

// AnonScoreKey, AnonQuestionListKey and AnonDataKey name the fields an
// anonymous taker's session keeps for this quiz.
func (q *Quiz) AnonScoreKey() string {
	return fmt.Sprintf("%d_score", q.ID)
}

func (q *Quiz) AnonQuestionListKey() string {
	return fmt.Sprintf("%d_q_list", q.ID)
}

func (q *Quiz) AnonDataKey() string {
	return fmt.Sprintf("%d_data", q.ID)
}

func (q *Quiz) String() string {
	return q.Title
}

// QuizFilter narrows quiz listings.
type QuizFilter struct {
	CategoryID    *int64
	IncludeDrafts bool
}
