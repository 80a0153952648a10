package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/repository/models"
	"quiz-sitting/internal/util"

	"github.com/jmoiron/sqlx"
)

const questionSelect = `SELECT
		q.id "id",
		q.quiz_id "quiz_id",
		q.kind "kind",
		q.category_id "category_id",
		q.sub_category_id "sub_category_id",
		c.category "category_name",
		q.figure "figure",
		q.content "content",
		q.explanation "explanation",
		q.answer_order "answer_order",
		q.tf_correct "tf_correct",
		q.created_at "created_at"
	FROM questions q
	LEFT JOIN categories c ON c.id = q.category_id`

// QuestionDatabaseAdapter implements domain.QuestionRepository using sqlx.DB.
// Every variant lives in the questions table; kind selects the concrete type
// and multiple choice answers come from the answers table.
type QuestionDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuestionDatabaseAdapter creates a new instance of QuestionDatabaseAdapter
func NewQuestionDatabaseAdapter(db *sqlx.DB) domain.QuestionRepository {
	return &QuestionDatabaseAdapter{db: db}
}

func toDomainQuestion(m *models.Question, answers []models.Answer) (domain.Question, error) {
	kind, err := domain.ParseQuestionKind(m.Kind)
	if err != nil {
		return nil, fmt.Errorf("question %d: %w", m.ID, err)
	}
	base := domain.QuestionBase{
		ID:            m.ID,
		QuizID:        m.QuizID,
		CategoryID:    util.NullInt64ToPtr(m.CategoryID),
		SubCategoryID: util.NullInt64ToPtr(m.SubCategoryID),
		CategoryName:  m.CategoryName.String,
		Figure:        m.Figure.String,
		Content:       m.Content,
		Explanation:   m.Explanation.String,
		CreatedAt:     m.CreatedAt,
	}

	switch kind {
	case domain.KindMultipleChoice:
		options := make([]domain.Answer, 0, len(answers))
		for _, a := range answers {
			options = append(options, domain.Answer{
				ID:         a.ID,
				QuestionID: a.QuestionID,
				Content:    a.Content,
				Correct:    util.IntToBool(a.Correct),
			})
		}
		return &domain.MultipleChoiceQuestion{
			QuestionBase: base,
			AnswerOrder:  domain.AnswerOrder(m.AnswerOrder.String),
			Options:      options,
		}, nil
	case domain.KindTrueFalse:
		return &domain.TrueFalseQuestion{QuestionBase: base, Correct: util.IntToBool(m.TFCorrect)}, nil
	default:
		return &domain.EssayQuestion{QuestionBase: base}, nil
	}
}

// answersFor loads the answers of the given questions, grouped by question id in insertion order.
func (a *QuestionDatabaseAdapter) answersFor(ctx context.Context, questionIDs []int64) (map[int64][]models.Answer, error) {
	grouped := make(map[int64][]models.Answer)
	if len(questionIDs) == 0 {
		return grouped, nil
	}

	in, args := inClause(questionIDs)
	query := a.db.Rebind(`SELECT id "id", question_id "question_id", content "content", correct "correct"
		FROM answers WHERE question_id IN ` + in + ` ORDER BY id`)

	var rows []models.Answer
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	for _, r := range rows {
		grouped[r.QuestionID] = append(grouped[r.QuestionID], r)
	}
	return grouped, nil
}

func (a *QuestionDatabaseAdapter) hydrate(ctx context.Context, rows []models.Question) ([]domain.Question, error) {
	var mcIDs []int64
	for _, r := range rows {
		if r.Kind == string(domain.KindMultipleChoice) {
			mcIDs = append(mcIDs, r.ID)
		}
	}
	answers, err := a.answersFor(ctx, mcIDs)
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(rows))
	for i := range rows {
		q, err := toDomainQuestion(&rows[i], answers[rows[i].ID])
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// GetQuestionByID implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) GetQuestionByID(ctx context.Context, id int64) (domain.Question, error) {
	var row models.Question
	query := a.db.Rebind(questionSelect + ` WHERE q.id = ?`)
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}

	questions, err := a.hydrate(ctx, []models.Question{row})
	if err != nil {
		return nil, err
	}
	return questions[0], nil
}

// GetQuestionsByIDs implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) GetQuestionsByIDs(ctx context.Context, ids []int64) ([]domain.Question, error) {
	if len(ids) == 0 {
		return []domain.Question{}, nil
	}

	in, args := inClause(ids)
	query := a.db.Rebind(questionSelect + ` WHERE q.id IN ` + in)

	var rows []models.Question
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	return a.hydrate(ctx, rows)
}

// GetQuestionIDsByQuiz implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) GetQuestionIDsByQuiz(ctx context.Context, quizID int64) ([]int64, error) {
	var ids []int64
	query := a.db.Rebind(`SELECT id FROM questions WHERE quiz_id = ? ORDER BY id`)
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &ids, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get question ids for quiz %d: %w", quizID, err)
	}
	return ids, nil
}

// CountQuestionsByQuiz implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) CountQuestionsByQuiz(ctx context.Context, quizID int64) (int, error) {
	var n int
	query := a.db.Rebind(`SELECT COUNT(*) FROM questions WHERE quiz_id = ?`)
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &n, query, quizID); err != nil {
		return 0, fmt.Errorf("failed to count questions for quiz %d: %w", quizID, err)
	}
	return n, nil
}

// SaveQuestion implements domain.QuestionRepository. Run it inside a
// transaction when the question carries answers.
func (a *QuestionDatabaseAdapter) SaveQuestion(ctx context.Context, q domain.Question) error {
	if q == nil {
		return fmt.Errorf("cannot save nil question")
	}
	exec := GetExecutor(ctx, a.db)
	id, err := nextID(ctx, a.db, exec, "questions_seq")
	if err != nil {
		return err
	}

	base := q.Base()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = time.Now()
	}
	row := models.Question{
		ID:            id,
		QuizID:        base.QuizID,
		Kind:          string(q.Kind()),
		CategoryID:    util.Int64PtrToNullInt64(base.CategoryID),
		SubCategoryID: util.Int64PtrToNullInt64(base.SubCategoryID),
		Figure:        util.StringToNullString(base.Figure),
		Content:       base.Content,
		Explanation:   util.StringToNullString(base.Explanation),
		CreatedAt:     base.CreatedAt,
	}
	switch v := q.(type) {
	case *domain.MultipleChoiceQuestion:
		row.AnswerOrder = util.StringToNullString(string(v.AnswerOrder))
	case *domain.TrueFalseQuestion:
		row.TFCorrect = util.BoolToInt(v.Correct)
	}

	query := a.db.Rebind(`INSERT INTO questions (
		id, quiz_id, kind, category_id, sub_category_id, figure, content,
		explanation, answer_order, tf_correct, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = exec.ExecContext(ctx, query,
		row.ID, row.QuizID, row.Kind, row.CategoryID, row.SubCategoryID, row.Figure, row.Content,
		row.Explanation, row.AnswerOrder, row.TFCorrect, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}
	base.ID = id

	mc, ok := q.(*domain.MultipleChoiceQuestion)
	if !ok {
		return nil
	}
	answerQuery := a.db.Rebind(`INSERT INTO answers (id, question_id, content, correct) VALUES (?, ?, ?, ?)`)
	for i := range mc.Options {
		answerID, err := nextID(ctx, a.db, exec, "answers_seq")
		if err != nil {
			return err
		}
		opt := &mc.Options[i]
		if _, err := exec.ExecContext(ctx, answerQuery, answerID, id, opt.Content, util.BoolToInt(opt.Correct)); err != nil {
			return fmt.Errorf("failed to save answer for question %d: %w", id, err)
		}
		opt.ID = answerID
		opt.QuestionID = id
	}
	return nil
}
