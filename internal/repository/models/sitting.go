package models

import (
	"database/sql"
	"time"
)

// Sitting maps the sittings table. The id lists and the answer ledger are
// kept in their text forms; conversion happens in the repository.
type Sitting struct {
	ID                 int64          `db:"id"`
	UserID             string         `db:"user_id"`
	QuizID             int64          `db:"quiz_id"`
	QuestionOrder      string         `db:"question_order"`
	QuestionList       sql.NullString `db:"question_list"`
	IncorrectQuestions sql.NullString `db:"incorrect_questions"`
	CurrentScore       int            `db:"current_score"`
	Complete           int            `db:"complete"`
	UserAnswers        sql.NullString `db:"user_answers"`
	StartAt            time.Time      `db:"start_at"`
	EndAt              sql.NullTime   `db:"end_at"`
	Version            int64          `db:"version"`
}

// Progress maps the progress table.
type Progress struct {
	ID      int64          `db:"id"`
	UserID  string         `db:"user_id"`
	Score   sql.NullString `db:"score"`
	Version int64          `db:"version"`
}
