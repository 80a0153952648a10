package dto

import "quiz-sitting/internal/domain"

// MarkingFilter narrows the marking list. Both fields are optional.
type MarkingFilter struct {
	Quiz   string `query:"quiz"`
	UserID string `query:"user_id"`
}

// MarkingDetailResponse is a completed sitting laid out for a marker.
// @Description Sitting detail for marking
type MarkingDetailResponse struct {
	Sitting   SittingSummaryResponse    `json:"sitting"`
	Questions []SittingQuestionResponse `json:"questions"`
}

// MarkQuestionRequest names the question of a sitting to act on.
type MarkQuestionRequest struct {
	QuestionID int64 `json:"question_id"`
}

// MarkingSuggestionResponse is an assistant's proposal for an essay answer.
// @Description Suggested verdict for an essay answer
type MarkingSuggestionResponse struct {
	SittingID  int64 `json:"sitting_id"`
	QuestionID int64 `json:"question_id"`
	domain.MarkingSuggestion
}
