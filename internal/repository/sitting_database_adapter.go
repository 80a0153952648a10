package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/repository/models"
	"quiz-sitting/internal/util"

	"github.com/jmoiron/sqlx"
)

const sittingColumns = `s.id "id",
		s.user_id "user_id",
		s.quiz_id "quiz_id",
		s.question_order "question_order",
		s.question_list "question_list",
		s.incorrect_questions "incorrect_questions",
		s.current_score "current_score",
		s.complete "complete",
		s.user_answers "user_answers",
		s.start_at "start_at",
		s.end_at "end_at",
		s.version "version"`

// SittingDatabaseAdapter implements domain.SittingRepository using sqlx.DB
type SittingDatabaseAdapter struct {
	db *sqlx.DB
}

// NewSittingDatabaseAdapter creates a new instance of SittingDatabaseAdapter
func NewSittingDatabaseAdapter(db *sqlx.DB) domain.SittingRepository {
	return &SittingDatabaseAdapter{db: db}
}

func toDomainSitting(m *models.Sitting) (*domain.Sitting, error) {
	order, err := domain.ParseIDList(m.QuestionOrder)
	if err != nil {
		return nil, fmt.Errorf("sitting %d question_order: %w", m.ID, err)
	}
	remaining, err := domain.ParseIDList(m.QuestionList.String)
	if err != nil {
		return nil, fmt.Errorf("sitting %d question_list: %w", m.ID, err)
	}
	incorrect, err := domain.ParseIDList(m.IncorrectQuestions.String)
	if err != nil {
		return nil, fmt.Errorf("sitting %d incorrect_questions: %w", m.ID, err)
	}
	answers, err := domain.ParseAnswerLedger(m.UserAnswers.String)
	if err != nil {
		return nil, fmt.Errorf("sitting %d user_answers: %w", m.ID, err)
	}

	return &domain.Sitting{
		ID:                 m.ID,
		UserID:             m.UserID,
		QuizID:             m.QuizID,
		QuestionOrder:      order,
		QuestionList:       remaining,
		IncorrectQuestions: incorrect,
		CurrentScore:       m.CurrentScore,
		Complete:           util.IntToBool(m.Complete),
		UserAnswers:        answers,
		Start:              m.StartAt,
		End:                util.NullTimeToPtr(m.EndAt),
		Version:            m.Version,
	}, nil
}

func toModelSitting(s *domain.Sitting) *models.Sitting {
	return &models.Sitting{
		ID:                 s.ID,
		UserID:             s.UserID,
		QuizID:             s.QuizID,
		QuestionOrder:      domain.EncodeIDList(s.QuestionOrder),
		QuestionList:       util.StringToNullString(domain.EncodeIDList(s.QuestionList)),
		IncorrectQuestions: util.StringToNullString(domain.EncodeIDList(s.IncorrectQuestions)),
		CurrentScore:       s.CurrentScore,
		Complete:           util.BoolToInt(s.Complete),
		UserAnswers:        util.StringToNullString(s.UserAnswers.String()),
		StartAt:            s.Start,
		EndAt:              util.TimePtrToNullTime(s.End),
		Version:            s.Version,
	}
}

func (a *SittingDatabaseAdapter) selectSittings(ctx context.Context, query string, args ...interface{}) ([]*domain.Sitting, error) {
	var rows []models.Sitting
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, a.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	sittings := make([]*domain.Sitting, 0, len(rows))
	for i := range rows {
		s, err := toDomainSitting(&rows[i])
		if err != nil {
			return nil, err
		}
		sittings = append(sittings, s)
	}
	return sittings, nil
}

// GetSittingByID implements domain.SittingRepository
func (a *SittingDatabaseAdapter) GetSittingByID(ctx context.Context, id int64) (*domain.Sitting, error) {
	var row models.Sitting
	query := a.db.Rebind(`SELECT ` + sittingColumns + ` FROM sittings s WHERE s.id = ?`)
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sitting %d: %w", id, err)
	}
	return toDomainSitting(&row)
}

// FindIncompleteSittings implements domain.SittingRepository
func (a *SittingDatabaseAdapter) FindIncompleteSittings(ctx context.Context, userID string, quizID int64) ([]*domain.Sitting, error) {
	sittings, err := a.selectSittings(ctx,
		`SELECT `+sittingColumns+` FROM sittings s WHERE s.user_id = ? AND s.quiz_id = ? AND s.complete = 0 ORDER BY s.id`,
		userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to find incomplete sittings for user %s quiz %d: %w", userID, quizID, err)
	}
	return sittings, nil
}

// HasCompletedSitting implements domain.SittingRepository
func (a *SittingDatabaseAdapter) HasCompletedSitting(ctx context.Context, userID string, quizID int64) (bool, error) {
	var n int
	query := a.db.Rebind(`SELECT COUNT(*) FROM sittings WHERE user_id = ? AND quiz_id = ? AND complete = 1`)
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &n, query, userID, quizID); err != nil {
		return false, fmt.Errorf("failed to count completed sittings for user %s quiz %d: %w", userID, quizID, err)
	}
	return n > 0, nil
}

// ListCompletedSittings implements domain.SittingRepository
func (a *SittingDatabaseAdapter) ListCompletedSittings(ctx context.Context, filter domain.SittingFilter) ([]*domain.Sitting, error) {
	query := `SELECT ` + sittingColumns + ` FROM sittings s`
	conditions := []string{`s.complete = 1`}
	var args []interface{}

	if filter.ExamOnly {
		query += ` JOIN quizzes q ON q.id = s.quiz_id`
		conditions = append(conditions, `q.exam_paper = 1`)
	}
	if filter.UserID != "" {
		conditions = append(conditions, `s.user_id = ?`)
		args = append(args, filter.UserID)
	}
	if filter.QuizID != 0 {
		conditions = append(conditions, `s.quiz_id = ?`)
		args = append(args, filter.QuizID)
	}
	query += ` WHERE ` + strings.Join(conditions, ` AND `) + ` ORDER BY s.end_at DESC, s.id DESC`

	sittings, err := a.selectSittings(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed sittings: %w", err)
	}
	return sittings, nil
}

// CreateSitting implements domain.SittingRepository
func (a *SittingDatabaseAdapter) CreateSitting(ctx context.Context, s *domain.Sitting) error {
	exec := GetExecutor(ctx, a.db)
	id, err := nextID(ctx, a.db, exec, "sittings_seq")
	if err != nil {
		return err
	}

	m := toModelSitting(s)
	m.ID = id
	m.Version = 1

	query := a.db.Rebind(`INSERT INTO sittings (
		id, user_id, quiz_id, question_order, question_list, incorrect_questions,
		current_score, complete, user_answers, start_at, end_at, version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = exec.ExecContext(ctx, query,
		m.ID, m.UserID, m.QuizID, m.QuestionOrder, m.QuestionList, m.IncorrectQuestions,
		m.CurrentScore, m.Complete, m.UserAnswers, m.StartAt, m.EndAt, m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create sitting: %w", err)
	}

	s.ID = m.ID
	s.Version = m.Version
	return nil
}

// UpdateSitting implements domain.SittingRepository
func (a *SittingDatabaseAdapter) UpdateSitting(ctx context.Context, s *domain.Sitting) error {
	m := toModelSitting(s)
	query := a.db.Rebind(`UPDATE sittings SET
		question_list = ?, incorrect_questions = ?, current_score = ?, complete = ?,
		user_answers = ?, end_at = ?, version = version + 1
	WHERE id = ? AND version = ?`)

	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		m.QuestionList, m.IncorrectQuestions, m.CurrentScore, m.Complete,
		m.UserAnswers, m.EndAt,
		m.ID, m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update sitting %d: %w", s.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("sitting %d at version %d: %w", s.ID, s.Version, domain.ErrConcurrentUpdate)
	}
	s.Version++
	return nil
}

// DeleteSitting implements domain.SittingRepository
func (a *SittingDatabaseAdapter) DeleteSitting(ctx context.Context, id int64) error {
	query := a.db.Rebind(`DELETE FROM sittings WHERE id = ?`)
	if _, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete sitting %d: %w", id, err)
	}
	return nil
}
