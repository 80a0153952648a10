package seedmodels

import "quiz-sitting/internal/dto"

// SeedQuestion is a question in the JSON seed file.
type SeedQuestion struct {
	Kind        string            `json:"kind"`
	Category    string            `json:"category"`
	SubCategory string            `json:"sub_category"`
	Content     string            `json:"content"`
	Explanation string            `json:"explanation"`
	AnswerOrder string            `json:"answer_order"`
	Correct     bool              `json:"correct"`
	Answers     []dto.AnswerInput `json:"answers"`
}

// SeedQuiz is a quiz with its questions.
type SeedQuiz struct {
	dto.QuizRequest
	Questions []SeedQuestion `json:"questions"`
}

// SeedCategory defines a category and its sub-categories.
type SeedCategory struct {
	Name          string   `json:"category_name"`
	SubCategories []string `json:"sub_categories"`
}

// SeedFile is the top-level layout of a seed file.
type SeedFile struct {
	Categories []SeedCategory `json:"categories"`
	Quizzes    []SeedQuiz     `json:"quizzes"`
}

// QuestionRequest converts a seeded question to the authoring request.
func (q SeedQuestion) QuestionRequest() *dto.QuestionRequest {
	return &dto.QuestionRequest{
		Kind:        q.Kind,
		Category:    q.Category,
		SubCategory: q.SubCategory,
		Content:     q.Content,
		Explanation: q.Explanation,
		AnswerOrder: q.AnswerOrder,
		Correct:     q.Correct,
		Answers:     q.Answers,
	}
}
