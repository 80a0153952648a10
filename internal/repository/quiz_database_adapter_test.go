package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"quiz-sitting/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quizRowColumns = []string{
	"id", "title", "description", "url", "category_id", "random_order", "max_questions",
	"answers_at_end", "exam_paper", "single_attempt", "pass_mark", "success_text",
	"fail_text", "draft", "created_at", "updated_at",
}

func TestGetQuizBySlug(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuizDatabaseAdapter(db)

	now := time.Now()
	rows := sqlmock.NewRows(quizRowColumns).
		AddRow(1, "Go Basics", nil, "go-basics", 2, 1, 5, 0, 1, 1, 60, "well done", nil, 0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM quizzes WHERE url = ?`)).
		WithArgs("go-basics").
		WillReturnRows(rows)

	quiz, err := repo.GetQuizBySlug(context.Background(), "go-basics")
	require.NoError(t, err)
	require.NotNil(t, quiz)
	assert.Equal(t, int64(1), quiz.ID)
	assert.Equal(t, "", quiz.Description)
	require.NotNil(t, quiz.CategoryID)
	assert.Equal(t, int64(2), *quiz.CategoryID)
	assert.True(t, quiz.RandomOrder)
	assert.Equal(t, 5, quiz.MaxQuestions)
	assert.False(t, quiz.AnswersAtEnd)
	assert.True(t, quiz.ExamPaper)
	assert.True(t, quiz.SingleAttempt)
	assert.Equal(t, 60, quiz.PassMark)
	assert.Equal(t, "well done", quiz.SuccessText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuizByID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuizDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM quizzes WHERE id = ?`)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(quizRowColumns))

	quiz, err := repo.GetQuizByID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, quiz)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListQuizzes_ByCategory(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuizDatabaseAdapter(db)

	now := time.Now()
	categoryID := int64(3)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM quizzes WHERE draft = 0 AND category_id = ? ORDER BY id`)).
		WithArgs(categoryID).
		WillReturnRows(sqlmock.NewRows(quizRowColumns).
			AddRow(1, "A", "desc", "a", 3, 0, 0, 0, 0, 0, 0, nil, nil, 0, now, now))

	quizzes, err := repo.ListQuizzes(context.Background(), domain.QuizFilter{CategoryID: &categoryID})
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	assert.Equal(t, "desc", quizzes[0].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListQuizzes_IncludeDrafts(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuizDatabaseAdapter(db)

	mock.ExpectQuery(`FROM quizzes ORDER BY id`).WillReturnRows(sqlmock.NewRows(quizRowColumns))

	quizzes, err := repo.ListQuizzes(context.Background(), domain.QuizFilter{IncludeDrafts: true})
	require.NoError(t, err)
	assert.Empty(t, quizzes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveQuiz(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuizDatabaseAdapter(db)

	quiz := &domain.Quiz{Title: "Final", URL: "final", SingleAttempt: true, ExamPaper: true, PassMark: 50}
	expectNextID(mock, "quizzes_seq", 11)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quizzes (`)).
		WithArgs(11, "Final", nil, "final", nil, 0, 0, 0, 1, 1, 50, nil, nil, 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveQuiz(context.Background(), quiz))
	assert.Equal(t, int64(11), quiz.ID)
	assert.False(t, quiz.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuiz_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuizDatabaseAdapter(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE quizzes SET`)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateQuiz(context.Background(), &domain.Quiz{ID: 3, Title: "T", URL: "t"})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeQuizNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuiz_EmptyID(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewQuizDatabaseAdapter(db)
	assert.Error(t, repo.UpdateQuiz(context.Background(), &domain.Quiz{Title: "T"}))
}

func TestDeleteQuiz(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuizDatabaseAdapter(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM quizzes WHERE id = ?`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DeleteQuiz(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
