package service

import (
	"context"
	"fmt"
	"testing"

	"quiz-sitting/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type progressDeps struct {
	progress   *MockProgressRepository
	categories *MockCategoryRepository
	sittings   *MockSittingRepository
	quizzes    *MockQuizRepository
}

func newTestProgressService() (ProgressService, *progressDeps) {
	deps := &progressDeps{
		progress:   new(MockProgressRepository),
		categories: new(MockCategoryRepository),
		sittings:   new(MockSittingRepository),
		quizzes:    new(MockQuizRepository),
	}
	return NewProgressService(deps.progress, deps.categories, deps.sittings, deps.quizzes), deps
}

func TestProgressUpdateScore_SkipsQuestionWithoutCategory(t *testing.T) {
	svc, deps := newTestProgressService()
	q := &domain.EssayQuestion{QuestionBase: domain.QuestionBase{ID: 5, QuizID: 1, Content: "Discuss"}}

	require.NoError(t, svc.UpdateScore(context.Background(), "u1", q, 1, 1))
	deps.progress.AssertNotCalled(t, "GetProgressByUser", mock.Anything, mock.Anything)
}

func TestProgressUpdateScore_CreatesLedger(t *testing.T) {
	svc, deps := newTestProgressService()
	deps.progress.On("GetProgressByUser", mock.Anything, "u1").Return(nil, nil)
	deps.progress.On("CreateProgress", mock.Anything, mock.MatchedBy(func(p *domain.Progress) bool {
		return p.UserID == "u1" && p.Score == "history,1,1,"
	})).Return(nil)

	require.NoError(t, svc.UpdateScore(context.Background(), "u1", tfQuestion(1, true), 1, 1))
	deps.progress.AssertExpectations(t)
}

func TestProgressUpdateScore_AccumulatesIntoOneTriple(t *testing.T) {
	svc, deps := newTestProgressService()
	existing := &domain.Progress{ID: 2, UserID: "u1", Score: "science,4,4,history,1,2,", Version: 3}
	deps.progress.On("GetProgressByUser", mock.Anything, "u1").Return(existing, nil)
	deps.progress.On("UpdateProgress", mock.Anything, existing).Return(nil)

	require.NoError(t, svc.UpdateScore(context.Background(), "u1", tfQuestion(1, true), 0, 1))
	assert.Equal(t, "science,4,4,history,1,3,", existing.Score)
	deps.progress.AssertExpectations(t)
}

func TestProgressUpdateScore_PassesConflictThrough(t *testing.T) {
	svc, deps := newTestProgressService()
	deps.progress.On("GetProgressByUser", mock.Anything, "u1").Return(&domain.Progress{ID: 2, UserID: "u1", Version: 1}, nil)
	deps.progress.On("UpdateProgress", mock.Anything, mock.Anything).Return(domain.ErrConcurrentUpdate)

	err := svc.UpdateScore(context.Background(), "u1", tfQuestion(1, true), 1, 1)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
}

func TestProgressUpdateScore_DuplicateLedgerIsRetryable(t *testing.T) {
	svc, deps := newTestProgressService()
	deps.progress.On("GetProgressByUser", mock.Anything, "u1").Return(nil, nil)
	deps.progress.On("CreateProgress", mock.Anything, mock.Anything).
		Return(fmt.Errorf("progress for user u1 already exists: %w", domain.ErrConcurrentUpdate))

	err := svc.UpdateScore(context.Background(), "u1", tfQuestion(1, true), 1, 1)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.False(t, domain.HasCode(err, domain.CodeInternal))
}

func TestCategoryScores_ListsEveryKnownCategory(t *testing.T) {
	svc, deps := newTestProgressService()
	deps.categories.On("GetAllCategories", mock.Anything).Return([]*domain.Category{
		{ID: 1, Name: "history"}, {ID: 2, Name: "science"},
	}, nil)
	deps.progress.On("GetProgressByUser", mock.Anything, "u1").
		Return(&domain.Progress{UserID: "u1", Score: "history,3,4,retired,1,1,"}, nil)

	scores, err := svc.CategoryScores(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryScore{
		{Category: "history", Score: 3, Possible: 4, Percent: 75},
		{Category: "science"},
	}, scores)
}

func TestCategoryScores_NoLedgerYet(t *testing.T) {
	svc, deps := newTestProgressService()
	deps.categories.On("GetAllCategories", mock.Anything).Return([]*domain.Category{{ID: 1, Name: "history"}}, nil)
	deps.progress.On("GetProgressByUser", mock.Anything, "u1").Return(nil, nil)

	scores, err := svc.CategoryScores(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryScore{{Category: "history"}}, scores)
}

func TestGetProgress_LoadsEachExamQuizOnce(t *testing.T) {
	svc, deps := newTestProgressService()
	deps.categories.On("GetAllCategories", mock.Anything).Return([]*domain.Category{}, nil)
	deps.progress.On("GetProgressByUser", mock.Anything, "u1").Return(nil, nil)

	end := fixedNow
	first := &domain.Sitting{ID: 1, UserID: "u1", QuizID: 4, QuestionOrder: []int64{1, 2}, CurrentScore: 2, Complete: true, End: &end}
	second := &domain.Sitting{ID: 2, UserID: "u1", QuizID: 4, QuestionOrder: []int64{1, 2}, CurrentScore: 0, Complete: true, End: &end}
	deps.sittings.On("ListCompletedSittings", mock.Anything, domain.SittingFilter{UserID: "u1", ExamOnly: true}).
		Return([]*domain.Sitting{first, second}, nil)
	deps.quizzes.On("GetQuizByID", mock.Anything, int64(4)).Return(&domain.Quiz{ID: 4, Title: "History", PassMark: 60}, nil).Once()

	resp, err := svc.GetProgress(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, resp.Exams, 2)
	assert.Equal(t, "History", resp.Exams[0].QuizTitle)
	assert.True(t, resp.Exams[0].Passed)
	assert.Equal(t, 100, resp.Exams[0].Percent)
	assert.False(t, resp.Exams[1].Passed)
	deps.quizzes.AssertNumberOfCalls(t, "GetQuizByID", 1)
}
