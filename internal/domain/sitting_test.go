package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sittingNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestNewSitting(t *testing.T) {
	t.Run("keeps insertion order", func(t *testing.T) {
		s, err := NewSitting("u1", &Quiz{ID: 1}, []int64{3, 1, 2}, sittingNow)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 1, 2}, s.QuestionOrder)
		assert.Equal(t, []int64{3, 1, 2}, s.QuestionList)
		assert.Empty(t, s.IncorrectQuestions)
		assert.Equal(t, 0, s.CurrentScore)
		assert.Equal(t, SittingCreated, s.State())
		assert.Equal(t, "{}", s.UserAnswers.String())
	})

	t.Run("max questions caps the list", func(t *testing.T) {
		all := []int64{1, 2, 3, 4, 5}
		s, err := NewSitting("u1", &Quiz{ID: 1, RandomOrder: true, MaxQuestions: 2}, all, sittingNow)
		require.NoError(t, err)
		require.Len(t, s.QuestionOrder, 2)
		assert.Subset(t, all, s.QuestionOrder)
		assert.NotEqual(t, s.QuestionOrder[0], s.QuestionOrder[1])
		assert.Equal(t, s.QuestionOrder, s.QuestionList)
	})

	t.Run("random order is a permutation", func(t *testing.T) {
		in := []int64{1, 2, 3, 4, 5}
		s, err := NewSitting("u1", &Quiz{ID: 1, RandomOrder: true}, in, sittingNow)
		require.NoError(t, err)
		assert.ElementsMatch(t, in, s.QuestionOrder)
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, in)
	})

	t.Run("no questions", func(t *testing.T) {
		_, err := NewSitting("u1", &Quiz{ID: 1}, nil, sittingNow)
		assert.True(t, HasCode(err, CodeInvalidInput))
	})
}

func TestSitting_Progression(t *testing.T) {
	s, err := NewSitting("u1", &Quiz{ID: 1}, []int64{1, 2}, sittingNow)
	require.NoError(t, err)

	id, err := s.FirstQuestionID()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	s.RecordAnswer(1, "True")
	s.AddToScore(1)
	s.RemoveFirstQuestion()
	assert.Equal(t, SittingInProgress, s.State())

	answered, total := s.Progress()
	assert.Equal(t, 1, answered)
	assert.Equal(t, 2, total)

	s.RecordAnswer(2, "7")
	s.AddIncorrectQuestion(2)
	s.RemoveFirstQuestion()

	_, err = s.FirstQuestionID()
	assert.True(t, errors.Is(err, ErrNoMoreQuestions))
	s.RemoveFirstQuestion()

	s.MarkComplete(sittingNow.Add(time.Minute))
	assert.Equal(t, SittingComplete, s.State())
	require.NotNil(t, s.End)
	assert.Equal(t, 50, s.PercentCorrect())
	assert.True(t, s.CheckIfPassed(50))
	assert.False(t, s.CheckIfPassed(51))
	assert.Equal(t, `{"1": "True", "2": "7"}`, s.UserAnswers.String())
}

func TestSitting_IncorrectMarks(t *testing.T) {
	t.Run("add then remove restores score", func(t *testing.T) {
		s := &Sitting{QuestionOrder: []int64{1, 2, 3}, CurrentScore: 2}
		s.AddIncorrectQuestion(3)
		assert.Equal(t, 2, s.CurrentScore)
		assert.Equal(t, []int64{3}, s.IncorrectQuestions)

		require.NoError(t, s.RemoveIncorrectQuestion(3))
		assert.Equal(t, 3, s.CurrentScore)
		assert.Empty(t, s.IncorrectQuestions)
	})

	t.Run("marking a complete sitting deducts", func(t *testing.T) {
		s := &Sitting{QuestionOrder: []int64{1, 2}, CurrentScore: 2, Complete: true}
		s.AddIncorrectQuestion(1)
		assert.Equal(t, 1, s.CurrentScore)
		require.NoError(t, s.RemoveIncorrectQuestion(1))
		assert.Equal(t, 2, s.CurrentScore)
		assert.Empty(t, s.IncorrectQuestions)
	})

	t.Run("abandoning remaining questions marks them wrong", func(t *testing.T) {
		s := &Sitting{QuestionOrder: []int64{1, 2, 3}, QuestionList: []int64{2, 3}, IncorrectQuestions: []int64{3}, CurrentScore: 1}
		s.AbandonRemaining()
		assert.Equal(t, []int64{3, 2}, s.IncorrectQuestions)
		assert.Empty(t, s.QuestionList)
		assert.Equal(t, 1, s.CurrentScore)

		s.MarkComplete(sittingNow)
		require.NoError(t, s.RemoveIncorrectQuestion(2))
		assert.Equal(t, 2, s.CurrentScore)
	})

	t.Run("abandon on a complete sitting is a no-op", func(t *testing.T) {
		s := &Sitting{QuestionOrder: []int64{1}, QuestionList: []int64{1}, CurrentScore: 0, Complete: true}
		s.AbandonRemaining()
		assert.Empty(t, s.IncorrectQuestions)
		assert.Equal(t, []int64{1}, s.QuestionList)
		assert.Equal(t, 0, s.CurrentScore)
	})

	t.Run("remove unknown id", func(t *testing.T) {
		s := &Sitting{CurrentScore: 1}
		err := s.RemoveIncorrectQuestion(9)
		assert.True(t, HasCode(err, CodeNotFound))
		assert.Equal(t, 1, s.CurrentScore)
	})
}

func TestSitting_PercentCorrect(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		possible int
		want     int
	}{
		{"empty sitting", 0, 0, 0},
		{"score above maximum", 10, 5, 100},
		{"three of ten", 3, 10, 30},
		{"below one percent", 1, 201, 0},
		{"half rounds to even", 1, 8, 12},
		{"negative score", -1, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sitting{CurrentScore: tt.score, QuestionOrder: make([]int64, tt.possible)}
			assert.Equal(t, tt.want, s.PercentCorrect())
		})
	}
}

func TestSitting_OrderQuestions(t *testing.T) {
	q1 := &TrueFalseQuestion{QuestionBase: QuestionBase{ID: 1}, Correct: true}
	q2 := &EssayQuestion{QuestionBase: QuestionBase{ID: 2}}
	s := &Sitting{
		QuestionOrder:      []int64{2, 1, 5},
		IncorrectQuestions: []int64{2},
		UserAnswers:        NewAnswerLedger(),
	}
	s.RecordAnswer(2, "an essay")

	plain := s.OrderQuestions([]Question{q1, q2}, false)
	require.Len(t, plain, 2)
	assert.Equal(t, int64(2), plain[0].Question.Base().ID)
	assert.Equal(t, int64(1), plain[1].Question.Base().ID)
	assert.False(t, plain[0].Answered)

	withAnswers := s.OrderQuestions([]Question{q1, q2}, true)
	require.Len(t, withAnswers, 2)
	assert.Equal(t, "an essay", withAnswers[0].UserAnswer)
	assert.True(t, withAnswers[0].Incorrect)
	assert.False(t, withAnswers[1].Answered)
}
