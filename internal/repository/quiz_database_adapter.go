package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/repository/models"
	"quiz-sitting/internal/util"

	"github.com/jmoiron/sqlx"
)

const quizColumns = `id "id",
		title "title",
		description "description",
		url "url",
		category_id "category_id",
		random_order "random_order",
		max_questions "max_questions",
		answers_at_end "answers_at_end",
		exam_paper "exam_paper",
		single_attempt "single_attempt",
		pass_mark "pass_mark",
		success_text "success_text",
		fail_text "fail_text",
		draft "draft",
		created_at "created_at",
		updated_at "updated_at"`

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	return &domain.Quiz{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description.String,
		URL:           m.URL,
		CategoryID:    util.NullInt64ToPtr(m.CategoryID),
		RandomOrder:   util.IntToBool(m.RandomOrder),
		MaxQuestions:  m.MaxQuestions,
		AnswersAtEnd:  util.IntToBool(m.AnswersAtEnd),
		ExamPaper:     util.IntToBool(m.ExamPaper),
		SingleAttempt: util.IntToBool(m.SingleAttempt),
		PassMark:      m.PassMark,
		SuccessText:   m.SuccessText.String,
		FailText:      m.FailText.String,
		Draft:         util.IntToBool(m.Draft),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toModelQuiz(q *domain.Quiz) *models.Quiz {
	return &models.Quiz{
		ID:            q.ID,
		Title:         q.Title,
		Description:   util.StringToNullString(q.Description),
		URL:           q.URL,
		CategoryID:    util.Int64PtrToNullInt64(q.CategoryID),
		RandomOrder:   util.BoolToInt(q.RandomOrder),
		MaxQuestions:  q.MaxQuestions,
		AnswersAtEnd:  util.BoolToInt(q.AnswersAtEnd),
		ExamPaper:     util.BoolToInt(q.ExamPaper),
		SingleAttempt: util.BoolToInt(q.SingleAttempt),
		PassMark:      q.PassMark,
		SuccessText:   util.StringToNullString(q.SuccessText),
		FailText:      util.StringToNullString(q.FailText),
		Draft:         util.BoolToInt(q.Draft),
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

func (a *QuizDatabaseAdapter) getOne(ctx context.Context, where string, arg interface{}) (*domain.Quiz, error) {
	var row models.Quiz
	query := a.db.Rebind(`SELECT ` + quizColumns + ` FROM quizzes WHERE ` + where)
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainQuiz(&row), nil
}

// GetQuizByID implements domain.QuizRepository
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id int64) (*domain.Quiz, error) {
	quiz, err := a.getOne(ctx, `id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by ID %d: %w", id, err)
	}
	return quiz, nil
}

// GetQuizBySlug implements domain.QuizRepository
func (a *QuizDatabaseAdapter) GetQuizBySlug(ctx context.Context, slug string) (*domain.Quiz, error) {
	quiz, err := a.getOne(ctx, `url = ?`, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by slug %s: %w", slug, err)
	}
	return quiz, nil
}

// ListQuizzes implements domain.QuizRepository
func (a *QuizDatabaseAdapter) ListQuizzes(ctx context.Context, filter domain.QuizFilter) ([]*domain.Quiz, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if !filter.IncludeDrafts {
		conditions = append(conditions, `draft = 0`)
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, `category_id = ?`)
		args = append(args, *filter.CategoryID)
	}

	query := `SELECT ` + quizColumns + ` FROM quizzes`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}
	query += ` ORDER BY id`

	var rows []models.Quiz
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, a.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	quizzes := make([]*domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, toDomainQuiz(&rows[i]))
	}
	return quizzes, nil
}

// SaveQuiz implements domain.QuizRepository
func (a *QuizDatabaseAdapter) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot save nil quiz")
	}
	exec := GetExecutor(ctx, a.db)
	id, err := nextID(ctx, a.db, exec, "quizzes_seq")
	if err != nil {
		return err
	}

	now := time.Now()
	m := toModelQuiz(quiz)
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now

	query := a.db.Rebind(`INSERT INTO quizzes (
		id, title, description, url, category_id, random_order, max_questions,
		answers_at_end, exam_paper, single_attempt, pass_mark, success_text,
		fail_text, draft, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = exec.ExecContext(ctx, query,
		m.ID, m.Title, m.Description, m.URL, m.CategoryID, m.RandomOrder, m.MaxQuestions,
		m.AnswersAtEnd, m.ExamPaper, m.SingleAttempt, m.PassMark, m.SuccessText,
		m.FailText, m.Draft, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}

	quiz.ID = m.ID
	quiz.CreatedAt = m.CreatedAt
	quiz.UpdatedAt = m.UpdatedAt
	return nil
}

// UpdateQuiz implements domain.QuizRepository
func (a *QuizDatabaseAdapter) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot update nil quiz")
	}
	if quiz.ID == 0 {
		return fmt.Errorf("cannot update quiz with empty ID")
	}
	m := toModelQuiz(quiz)
	m.UpdatedAt = time.Now()

	query := a.db.Rebind(`UPDATE quizzes SET
		title = ?, description = ?, url = ?, category_id = ?, random_order = ?,
		max_questions = ?, answers_at_end = ?, exam_paper = ?, single_attempt = ?,
		pass_mark = ?, success_text = ?, fail_text = ?, draft = ?, updated_at = ?
	WHERE id = ?`)

	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		m.Title, m.Description, m.URL, m.CategoryID, m.RandomOrder,
		m.MaxQuestions, m.AnswersAtEnd, m.ExamPaper, m.SingleAttempt,
		m.PassMark, m.SuccessText, m.FailText, m.Draft, m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewQuizNotFoundError(quiz.URL)
	}
	quiz.UpdatedAt = m.UpdatedAt
	return nil
}

// DeleteQuiz implements domain.QuizRepository. Questions, answers and
// sittings go with it through ON DELETE CASCADE.
func (a *QuizDatabaseAdapter) DeleteQuiz(ctx context.Context, id int64) error {
	query := a.db.Rebind(`DELETE FROM quizzes WHERE id = ?`)
	if _, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete quiz %d: %w", id, err)
	}
	return nil
}
