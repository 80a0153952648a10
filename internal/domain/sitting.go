package domain

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"
)

// SittingState is the lifecycle stage of a sitting.
type SittingState string

const (
	SittingCreated    SittingState = "created"
	SittingInProgress SittingState = "in_progress"
	SittingComplete   SittingState = "complete"
)

// Sitting is one attempt by a user on a quiz.
//
// QuestionOrder is the snapshot taken when the sitting was created and never
// changes. QuestionList is consumed from the front as questions are answered.
type Sitting struct {
	ID                 int64
	UserID             string
	QuizID             int64
	QuestionOrder      []int64
	QuestionList       []int64
	IncorrectQuestions []int64
	CurrentScore       int
	Complete           bool
	UserAnswers        *AnswerLedger
	Start              time.Time
	End                *time.Time
	// Version guards concurrent updates of the row.
	Version int64
}

// NewSitting builds a fresh sitting over questionIDs, shuffled when the quiz
// asks for random order and cut down to the quiz's question cap.
func NewSitting(userID string, quiz *Quiz, questionIDs []int64, now time.Time) (*Sitting, error) {
	if quiz == nil {
		return nil, NewInvalidInputError("quiz is required")
	}
	if len(questionIDs) == 0 {
		return nil, NewError(CodeInvalidInput, fmt.Sprintf("quiz %q has no questions", quiz.URL), nil)
	}

	ids := slices.Clone(questionIDs)
	if quiz.RandomOrder {
		rand.Shuffle(len(ids), func(i, j int) {
			ids[i], ids[j] = ids[j], ids[i]
		})
	}
	if quiz.MaxQuestions > 0 && quiz.MaxQuestions < len(ids) {
		ids = ids[:quiz.MaxQuestions]
	}

	return &Sitting{
		UserID:             userID,
		QuizID:             quiz.ID,
		QuestionOrder:      ids,
		QuestionList:       slices.Clone(ids),
		IncorrectQuestions: []int64{},
		UserAnswers:        NewAnswerLedger(),
		Start:              now,
	}, nil
}

// FirstQuestionID returns the head of the remaining list, or ErrNoMoreQuestions.
func (s *Sitting) FirstQuestionID() (int64, error) {
	if len(s.QuestionList) == 0 {
		return 0, ErrNoMoreQuestions
	}
	return s.QuestionList[0], nil
}

// RemoveFirstQuestion pops the head of the remaining list. No-op when empty.
func (s *Sitting) RemoveFirstQuestion() {
	if len(s.QuestionList) == 0 {
		return
	}
	s.QuestionList = s.QuestionList[1:]
}

func (s *Sitting) AddToScore(points int) {
	s.CurrentScore += points
}

// AddIncorrectQuestion marks a question wrong. On a completed sitting this is
// a marker revoking a point, so the score drops by one.
func (s *Sitting) AddIncorrectQuestion(questionID int64) {
	s.IncorrectQuestions = append(s.IncorrectQuestions, questionID)
	if s.Complete {
		s.AddToScore(-1)
	}
}

// RemoveIncorrectQuestion clears a question's wrong mark and awards a point.
func (s *Sitting) RemoveIncorrectQuestion(questionID int64) error {
	if !s.IsIncorrect(questionID) {
		return NewNotFoundError(fmt.Sprintf("question %d is not marked incorrect", questionID))
	}
	s.IncorrectQuestions = slices.DeleteFunc(s.IncorrectQuestions, func(id int64) bool {
		return id == questionID
	})
	s.AddToScore(1)
	return nil
}

// AbandonRemaining marks every unanswered question wrong and empties the
// list. It runs before completion so no points are deducted.
func (s *Sitting) AbandonRemaining() {
	if s.Complete {
		return
	}
	for _, id := range s.QuestionList {
		if !s.IsIncorrect(id) {
			s.AddIncorrectQuestion(id)
		}
	}
	s.QuestionList = []int64{}
}

func (s *Sitting) IsIncorrect(questionID int64) bool {
	return slices.Contains(s.IncorrectQuestions, questionID)
}

// RecordAnswer stores the guess for a question, replacing any earlier one.
func (s *Sitting) RecordAnswer(questionID int64, guess string) {
	if s.UserAnswers == nil {
		s.UserAnswers = NewAnswerLedger()
	}
	s.UserAnswers.Set(questionID, guess)
}

// MaxScore is the number of questions in the sitting.
func (s *Sitting) MaxScore() int {
	return len(s.QuestionOrder)
}

// PercentCorrect is the score as a whole percentage of MaxScore, rounded half
// to even. An empty sitting is 0, a score above the maximum is 100 and
// anything that rounds below 1 is 0.
func (s *Sitting) PercentCorrect() int {
	divisor := s.MaxScore()
	if divisor < 1 {
		return 0
	}
	if s.CurrentScore > divisor {
		return 100
	}
	correct := int(math.RoundToEven(float64(s.CurrentScore) / float64(divisor) * 100))
	if correct < 1 {
		return 0
	}
	return correct
}

func (s *Sitting) CheckIfPassed(passMark int) bool {
	return s.PercentCorrect() >= passMark
}

func (s *Sitting) MarkComplete(now time.Time) {
	s.Complete = true
	s.End = &now
}

// Progress returns how many questions have an answer and how many there are.
func (s *Sitting) Progress() (answered, total int) {
	return s.UserAnswers.Len(), s.MaxScore()
}

func (s *Sitting) State() SittingState {
	switch {
	case s.Complete:
		return SittingComplete
	case len(s.QuestionList) < len(s.QuestionOrder) || s.UserAnswers.Len() > 0:
		return SittingInProgress
	default:
		return SittingCreated
	}
}

// SittingQuestion is a question of a sitting together with what the user did with it.
type SittingQuestion struct {
	Question   Question
	UserAnswer string
	Answered   bool
	Incorrect  bool
}

// OrderQuestions arranges loaded questions by the sitting's original order.
// Ids with no loaded question are skipped. withAnswers attaches the recorded
// guesses and incorrect marks.
func (s *Sitting) OrderQuestions(questions []Question, withAnswers bool) []SittingQuestion {
	byID := make(map[int64]Question, len(questions))
	for _, q := range questions {
		byID[q.Base().ID] = q
	}

	ordered := make([]SittingQuestion, 0, len(s.QuestionOrder))
	for _, id := range s.QuestionOrder {
		q, ok := byID[id]
		if !ok {
			continue
		}
		item := SittingQuestion{Question: q}
		if withAnswers {
			item.UserAnswer, item.Answered = s.UserAnswers.Get(id)
			item.Incorrect = s.IsIncorrect(id)
		}
		ordered = append(ordered, item)
	}
	return ordered
}

// SittingFilter narrows listings of completed sittings.
type SittingFilter struct {
	UserID   string
	QuizID   int64
	ExamOnly bool
}
