package service

import (
	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/dto"
)

func toQuizSummary(q *domain.Quiz) dto.QuizSummaryResponse {
	return dto.QuizSummaryResponse{
		ID:            q.ID,
		Title:         q.Title,
		Description:   q.Description,
		URL:           q.URL,
		CategoryID:    q.CategoryID,
		ExamPaper:     q.ExamPaper,
		SingleAttempt: q.SingleAttempt,
		PassMark:      q.PassMark,
	}
}

func toQuestionResponse(q domain.Question) *dto.QuestionResponse {
	base := q.Base()
	return &dto.QuestionResponse{
		ID:       base.ID,
		Kind:     string(q.Kind()),
		Category: base.CategoryName,
		Figure:   base.Figure,
		Content:  base.Content,
		Choices:  q.AnswersList(),
	}
}

func toSittingQuestions(items []domain.SittingQuestion) []dto.SittingQuestionResponse {
	out := make([]dto.SittingQuestionResponse, 0, len(items))
	for _, item := range items {
		resp := dto.SittingQuestionResponse{
			Question:    *toQuestionResponse(item.Question),
			Answered:    item.Answered,
			Incorrect:   item.Incorrect,
			Answers:     item.Question.Answers(),
			Explanation: item.Question.Base().Explanation,
		}
		if item.Answered {
			resp.UserAnswer = item.Question.AnswerChoiceToString(item.UserAnswer)
		}
		out = append(out, resp)
	}
	return out
}

// toSittingSummary renders a sitting row. quiz may be nil when it was deleted.
func toSittingSummary(s *domain.Sitting, quiz *domain.Quiz) dto.SittingSummaryResponse {
	resp := dto.SittingSummaryResponse{
		ID:       s.ID,
		UserID:   s.UserID,
		QuizID:   s.QuizID,
		Score:    s.CurrentScore,
		MaxScore: s.MaxScore(),
		Percent:  s.PercentCorrect(),
		Start:    s.Start,
		End:      s.End,
	}
	if quiz != nil {
		resp.QuizTitle = quiz.Title
		resp.Passed = s.CheckIfPassed(quiz.PassMark)
	}
	return resp
}

func progressInfo(s *domain.Sitting) dto.ProgressInfo {
	answered, total := s.Progress()
	return dto.ProgressInfo{Answered: answered, Total: total}
}
