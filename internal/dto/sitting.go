package dto

import (
	"time"

	"quiz-sitting/internal/domain"
)

// ProgressInfo is the (answered, total) pair of a sitting.
type ProgressInfo struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// TakeQuizResponse is returned when a taker opens or resumes a quiz.
// SessionID is only set for anonymous takers.
// @Description Current state of a sitting
type TakeQuizResponse struct {
	Quiz      QuizSummaryResponse    `json:"quiz"`
	SittingID int64                  `json:"sitting_id,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	Question  *QuestionResponse      `json:"question,omitempty"`
	Progress  ProgressInfo           `json:"progress"`
	Result    *SittingResultResponse `json:"result,omitempty"`
}

// SubmitAnswerRequest answers the current question. QuestionID is optional
// and guards against answering a question that is no longer current.
// @Description Request body for answering the current question
type SubmitAnswerRequest struct {
	QuestionID int64  `json:"question_id"`
	Guess      string `json:"guess"`
}

// AnswerFeedback reveals the outcome of the question just answered.
type AnswerFeedback struct {
	QuestionID  int64               `json:"question_id"`
	Guess       string              `json:"guess"`
	Correct     bool                `json:"correct"`
	Answers     []domain.AnswerView `json:"answers,omitempty"`
	Explanation string              `json:"explanation,omitempty"`
}

// SubmitAnswerResponse carries feedback (unless answers are held until the
// end) and either the next question or the final result.
// @Description Outcome of an answer submission
type SubmitAnswerResponse struct {
	SessionID string                 `json:"session_id,omitempty"`
	Feedback  *AnswerFeedback        `json:"feedback,omitempty"`
	Next      *QuestionResponse      `json:"next,omitempty"`
	Progress  ProgressInfo           `json:"progress"`
	Result    *SittingResultResponse `json:"result,omitempty"`
}

// SittingQuestionResponse is a question of a sitting with the taker's answer.
type SittingQuestionResponse struct {
	Question    QuestionResponse    `json:"question"`
	UserAnswer  string              `json:"user_answer,omitempty"`
	Answered    bool                `json:"answered"`
	Incorrect   bool                `json:"incorrect"`
	Answers     []domain.AnswerView `json:"answers,omitempty"`
	Explanation string              `json:"explanation,omitempty"`
}

// SittingResultResponse is the end-of-quiz summary.
// @Description Result of a completed sitting
type SittingResultResponse struct {
	Score     int                       `json:"score"`
	MaxScore  int                       `json:"max_score"`
	Percent   int                       `json:"percent"`
	Passed    bool                      `json:"passed"`
	Message   string                    `json:"message,omitempty"`
	Questions []SittingQuestionResponse `json:"questions,omitempty"`
}

// SittingSummaryResponse is one row of a sitting listing.
type SittingSummaryResponse struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	QuizID    int64      `json:"quiz_id"`
	QuizTitle string     `json:"quiz_title,omitempty"`
	Score     int        `json:"score"`
	MaxScore  int        `json:"max_score"`
	Percent   int        `json:"percent"`
	Passed    bool       `json:"passed"`
	Start     time.Time  `json:"start"`
	End       *time.Time `json:"end,omitempty"`
}

// ProgressResponse is a user's progress page.
// @Description Category scores and completed exams of the caller
type ProgressResponse struct {
	Categories []domain.CategoryScore   `json:"categories"`
	Exams      []SittingSummaryResponse `json:"exams"`
}
