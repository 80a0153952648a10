package domain

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// AnswerOrder controls how multiple choice answers are listed.
type AnswerOrder string

const (
	AnswerOrderContent AnswerOrder = "content"
	AnswerOrderRandom  AnswerOrder = "random"
	AnswerOrderNone    AnswerOrder = "none"
)

// Answer is one option of a multiple choice question.
type Answer struct {
	ID         int64
	QuestionID int64
	Content    string
	Correct    bool
}

// MultipleChoiceQuestion is checked against its stored answers. Guesses are answer ids.
type MultipleChoiceQuestion struct {
	QuestionBase
	AnswerOrder AnswerOrder
	// Options are kept in insertion order.
	Options []Answer
}

func (q *MultipleChoiceQuestion) Kind() QuestionKind { return KindMultipleChoice }

// FindAnswer returns the option whose id is guess.
func (q *MultipleChoiceQuestion) FindAnswer(guess string) (*Answer, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(guess), 10, 64)
	if err != nil {
		return nil, false
	}
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i], true
		}
	}
	return nil, false
}

func (q *MultipleChoiceQuestion) CheckIfCorrect(guess string) bool {
	answer, ok := q.FindAnswer(guess)
	return ok && answer.Correct
}

// orderedOptions applies the answer order policy to a copy of the options.
// The random order is recomputed on every call.
func (q *MultipleChoiceQuestion) orderedOptions() []Answer {
	options := make([]Answer, len(q.Options))
	copy(options, q.Options)

	switch q.AnswerOrder {
	case AnswerOrderContent:
		sort.SliceStable(options, func(i, j int) bool {
			return options[i].Content < options[j].Content
		})
	case AnswerOrderRandom:
		rand.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
	}
	return options
}

func (q *MultipleChoiceQuestion) Answers() []AnswerView {
	options := q.orderedOptions()
	views := make([]AnswerView, len(options))
	for i, a := range options {
		views[i] = AnswerView{ID: a.ID, Content: a.Content, Correct: a.Correct}
	}
	return views
}

func (q *MultipleChoiceQuestion) AnswersList() []AnswerChoice {
	options := q.orderedOptions()
	choices := make([]AnswerChoice, len(options))
	for i, a := range options {
		choices[i] = AnswerChoice{Value: strconv.FormatInt(a.ID, 10), Label: a.Content}
	}
	return choices
}

func (q *MultipleChoiceQuestion) AnswerChoiceToString(guess string) string {
	if answer, ok := q.FindAnswer(guess); ok {
		return answer.Content
	}
	return ""
}

func (q *MultipleChoiceQuestion) validateAnswers() ValidationErrors {
	var errs ValidationErrors
	switch q.AnswerOrder {
	case "", AnswerOrderContent, AnswerOrderRandom, AnswerOrderNone:
	default:
		errs = append(errs, NewInvalidFormatError("answer_order", string(q.AnswerOrder)))
	}
	if len(q.Options) == 0 {
		errs = append(errs, NewMissingFieldError("answers"))
	}
	for _, a := range q.Options {
		if strings.TrimSpace(a.Content) == "" {
			errs = append(errs, NewMissingFieldError("answers.content"))
			break
		}
	}
	return errs
}
