package dto

import "quiz-sitting/internal/domain"

// CategoryResponse represents a category in the API response
// @Description Category information
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubCategoryResponse represents a subcategory in the API response
type SubCategoryResponse struct {
	ID         int64  `json:"id"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Name       string `json:"name"`
}

// CreateCategoryRequest is the body for creating a category or subcategory.
// Category names the owning category and is only read for subcategories.
type CreateCategoryRequest struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// QuizSummaryResponse is a catalogue entry.
// @Description Quiz catalogue entry
type QuizSummaryResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	CategoryID    *int64 `json:"category_id,omitempty"`
	ExamPaper     bool   `json:"exam_paper"`
	SingleAttempt bool   `json:"single_attempt"`
	PassMark      int    `json:"pass_mark"`
}

// QuizDetailResponse describes one quiz before it is taken.
// @Description Quiz detail
type QuizDetailResponse struct {
	QuizSummaryResponse
	RandomOrder   bool `json:"random_order"`
	AnswersAtEnd  bool `json:"answers_at_end"`
	MaxQuestions  int  `json:"max_questions"`
	QuestionCount int  `json:"question_count"`
	MaxScore      int  `json:"max_score"`
	Draft         bool `json:"draft"`
}

// QuizRequest is the body for creating or replacing a quiz.
// @Description Request body for creating a quiz
type QuizRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	Category      string `json:"category"`
	RandomOrder   bool   `json:"random_order"`
	MaxQuestions  int    `json:"max_questions"`
	AnswersAtEnd  bool   `json:"answers_at_end"`
	ExamPaper     bool   `json:"exam_paper"`
	SingleAttempt bool   `json:"single_attempt"`
	PassMark      int    `json:"pass_mark"`
	SuccessText   string `json:"success_text"`
	FailText      string `json:"fail_text"`
	Draft         bool   `json:"draft"`
}

// AnswerInput is one multiple choice option of a new question.
type AnswerInput struct {
	Content string `json:"content"`
	Correct bool   `json:"correct"`
}

// QuestionRequest is the body for adding a question to a quiz.
// Correct is read for true/false questions, Answers and AnswerOrder for multiple choice.
// @Description Request body for adding a question
type QuestionRequest struct {
	Kind        string        `json:"kind"`
	Category    string        `json:"category"`
	SubCategory string        `json:"sub_category"`
	Figure      string        `json:"figure"`
	Content     string        `json:"content"`
	Explanation string        `json:"explanation"`
	AnswerOrder string        `json:"answer_order"`
	Correct     bool          `json:"correct"`
	Answers     []AnswerInput `json:"answers"`
}

// QuestionResponse is a question as shown to a taker: choices, never correctness.
// @Description Question shown to a taker
type QuestionResponse struct {
	ID       int64                 `json:"id"`
	Kind     string                `json:"kind"`
	Category string                `json:"category,omitempty"`
	Figure   string                `json:"figure,omitempty"`
	Content  string                `json:"content"`
	Choices  []domain.AnswerChoice `json:"choices,omitempty"`
}
