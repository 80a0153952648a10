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

var questionRowColumns = []string{
	"id", "quiz_id", "kind", "category_id", "sub_category_id", "category_name", "figure",
	"content", "explanation", "answer_order", "tf_correct", "created_at",
}

var answerRowColumns = []string{"id", "question_id", "content", "correct"}

func TestGetQuestionsByIDs_LoadsEachVariant(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionDatabaseAdapter(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN categories c ON c.id = q.category_id WHERE q.id IN (?, ?, ?)`)).
		WithArgs(1, 2, 3).
		WillReturnRows(sqlmock.NewRows(questionRowColumns).
			AddRow(1, 10, "multiple_choice", 5, nil, "history", nil, "Pick", "because", "content", 0, now).
			AddRow(2, 10, "true_false", nil, nil, nil, nil, "Sky is blue", nil, nil, 1, now).
			AddRow(3, 10, "essay", nil, nil, nil, "fig.png", "Discuss", nil, nil, 0, now))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM answers WHERE question_id IN (?) ORDER BY id`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(answerRowColumns).
			AddRow(100, 1, "b", 0).
			AddRow(101, 1, "a", 1))

	questions, err := repo.GetQuestionsByIDs(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, questions, 3)

	mc, ok := questions[0].(*domain.MultipleChoiceQuestion)
	require.True(t, ok)
	assert.Equal(t, "history", mc.CategoryName)
	assert.Equal(t, domain.AnswerOrderContent, mc.AnswerOrder)
	require.Len(t, mc.Options, 2)
	assert.True(t, mc.CheckIfCorrect("101"))

	tf, ok := questions[1].(*domain.TrueFalseQuestion)
	require.True(t, ok)
	assert.True(t, tf.Correct)
	assert.Nil(t, tf.CategoryID)

	essay, ok := questions[2].(*domain.EssayQuestion)
	require.True(t, ok)
	assert.Equal(t, "fig.png", essay.Figure)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuestionsByIDs_Empty(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionDatabaseAdapter(db)

	questions, err := repo.GetQuestionsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, questions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuestionByID_UnknownKind(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE q.id = ?`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(questionRowColumns).
			AddRow(7, 1, "matching", nil, nil, nil, nil, "?", nil, nil, 0, time.Now()))

	_, err := repo.GetQuestionByID(context.Background(), 7)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuestionByID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE q.id = ?`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(questionRowColumns))

	q, err := repo.GetQuestionByID(context.Background(), 7)
	assert.NoError(t, err)
	assert.Nil(t, q)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuestionIDsByQuiz(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM questions WHERE quiz_id = ? ORDER BY id`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	ids, err := repo.GetQuestionIDsByQuiz(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveQuestion_MultipleChoiceWithAnswers(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionDatabaseAdapter(db)

	q := &domain.MultipleChoiceQuestion{
		QuestionBase: domain.QuestionBase{QuizID: 10, Content: "Pick"},
		AnswerOrder:  domain.AnswerOrderRandom,
		Options: []domain.Answer{
			{Content: "yes", Correct: true},
			{Content: "no"},
		},
	}

	expectNextID(mock, "questions_seq", 50)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO questions (`)).
		WithArgs(50, 10, "multiple_choice", nil, nil, nil, "Pick", nil, "random", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectNextID(mock, "answers_seq", 500)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO answers (id, question_id, content, correct) VALUES (?, ?, ?, ?)`)).
		WithArgs(500, 50, "yes", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectNextID(mock, "answers_seq", 501)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO answers`)).
		WithArgs(501, 50, "no", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveQuestion(context.Background(), q))
	assert.Equal(t, int64(50), q.ID)
	assert.Equal(t, int64(500), q.Options[0].ID)
	assert.Equal(t, int64(50), q.Options[1].QuestionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveQuestion_TrueFalse(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionDatabaseAdapter(db)

	catID := int64(5)
	q := &domain.TrueFalseQuestion{
		QuestionBase: domain.QuestionBase{QuizID: 10, CategoryID: &catID, Content: "Sky is blue"},
		Correct:      true,
	}

	expectNextID(mock, "questions_seq", 51)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO questions (`)).
		WithArgs(51, 10, "true_false", 5, nil, nil, "Sky is blue", nil, nil, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveQuestion(context.Background(), q))
	assert.Equal(t, int64(51), q.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
