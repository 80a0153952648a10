package models

import (
	"database/sql"
	"time"
)

// Flags are stored as 0/1 integers: Oracle has no boolean column type.

// Category maps the categories table.
type Category struct {
	ID        int64     `db:"id"`
	Name      string    `db:"category"`
	CreatedAt time.Time `db:"created_at"`
}

// SubCategory maps the sub_categories table.
type SubCategory struct {
	ID         int64         `db:"id"`
	Name       string        `db:"sub_category"`
	CategoryID sql.NullInt64 `db:"category_id"`
	CreatedAt  time.Time     `db:"created_at"`
}

// Quiz maps the quizzes table.
type Quiz struct {
	ID            int64          `db:"id"`
	Title         string         `db:"title"`
	Description   sql.NullString `db:"description"`
	URL           string         `db:"url"`
	CategoryID    sql.NullInt64  `db:"category_id"`
	RandomOrder   int            `db:"random_order"`
	MaxQuestions  int            `db:"max_questions"`
	AnswersAtEnd  int            `db:"answers_at_end"`
	ExamPaper     int            `db:"exam_paper"`
	SingleAttempt int            `db:"single_attempt"`
	PassMark      int            `db:"pass_mark"`
	SuccessText   sql.NullString `db:"success_text"`
	FailText      sql.NullString `db:"fail_text"`
	Draft         int            `db:"draft"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// Question maps the questions table. Kind selects which variant columns apply.
type Question struct {
	ID            int64          `db:"id"`
	QuizID        int64          `db:"quiz_id"`
	Kind          string         `db:"kind"`
	CategoryID    sql.NullInt64  `db:"category_id"`
	SubCategoryID sql.NullInt64  `db:"sub_category_id"`
	CategoryName  sql.NullString `db:"category_name"`
	Figure        sql.NullString `db:"figure"`
	Content       string         `db:"content"`
	Explanation   sql.NullString `db:"explanation"`
	AnswerOrder   sql.NullString `db:"answer_order"`
	TFCorrect     int            `db:"tf_correct"`
	CreatedAt     time.Time      `db:"created_at"`
}

// Answer maps the answers table.
type Answer struct {
	ID         int64  `db:"id"`
	QuestionID int64  `db:"question_id"`
	Content    string `db:"content"`
	Correct    int    `db:"correct"`
}
