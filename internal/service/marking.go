package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/dto"
	"quiz-sitting/internal/logger"

	"go.uber.org/zap"
)

// MarkingService lets markers review completed exam sittings and override
// the automatic verdict of individual questions.
type MarkingService interface {
	ListSittings(ctx context.Context, filter dto.MarkingFilter) ([]dto.SittingSummaryResponse, error)
	GetSittingDetail(ctx context.Context, sittingID int64) (*dto.MarkingDetailResponse, error)
	ToggleQuestionMark(ctx context.Context, sittingID, questionID int64) (*dto.MarkingDetailResponse, error)
	SuggestMark(ctx context.Context, sittingID, questionID int64) (*dto.MarkingSuggestionResponse, error)
}

type markingService struct {
	sittingRepo domain.SittingRepository
	quizRepo    domain.QuizRepository
	sittings    SittingService
	txManager   domain.TransactionManager
	assistant   domain.EssayMarkingAssistant // optional
}

func NewMarkingService(
	sittingRepo domain.SittingRepository,
	quizRepo domain.QuizRepository,
	sittings SittingService,
	txManager domain.TransactionManager,
	assistant domain.EssayMarkingAssistant,
) MarkingService {
	return &markingService{
		sittingRepo: sittingRepo,
		quizRepo:    quizRepo,
		sittings:    sittings,
		txManager:   txManager,
		assistant:   assistant,
	}
}

func (s *markingService) ListSittings(ctx context.Context, filter dto.MarkingFilter) ([]dto.SittingSummaryResponse, error) {
	sf := domain.SittingFilter{UserID: strings.TrimSpace(filter.UserID), ExamOnly: true}
	if slug := strings.TrimSpace(filter.Quiz); slug != "" {
		quiz, err := s.quizRepo.GetQuizBySlug(ctx, slug)
		if err != nil {
			return nil, domain.NewInternalError("failed to get quiz", err)
		}
		if quiz == nil {
			return nil, domain.NewQuizNotFoundError(slug)
		}
		sf.QuizID = quiz.ID
	}

	sittings, err := s.sittingRepo.ListCompletedSittings(ctx, sf)
	if err != nil {
		return nil, domain.NewInternalError("failed to list sittings", err)
	}
	return summarizeSittings(ctx, s.quizRepo, sittings)
}

// completedSitting loads a sitting that can be marked.
func (s *markingService) completedSitting(ctx context.Context, sittingID int64) (*domain.Sitting, error) {
	sitting, err := s.sittingRepo.GetSittingByID(ctx, sittingID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get sitting", err)
	}
	if sitting == nil || !sitting.Complete {
		return nil, domain.NewNotFoundError(fmt.Sprintf("completed sitting %d not found", sittingID))
	}
	return sitting, nil
}

func (s *markingService) GetSittingDetail(ctx context.Context, sittingID int64) (*dto.MarkingDetailResponse, error) {
	sitting, err := s.completedSitting(ctx, sittingID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, sitting)
}

func (s *markingService) detail(ctx context.Context, sitting *domain.Sitting) (*dto.MarkingDetailResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, sitting.QuizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	items, err := s.sittings.GetQuestionsOrdered(ctx, sitting, true)
	if err != nil {
		return nil, err
	}
	return &dto.MarkingDetailResponse{
		Sitting:   toSittingSummary(sitting, quiz),
		Questions: toSittingQuestions(items),
	}, nil
}

// ToggleQuestionMark flips one question between correct and incorrect,
// moving the score by one point.
func (s *markingService) ToggleQuestionMark(ctx context.Context, sittingID, questionID int64) (*dto.MarkingDetailResponse, error) {
	var sitting *domain.Sitting
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if sitting, err = s.completedSitting(txCtx, sittingID); err != nil {
			return err
		}
		if !slices.Contains(sitting.QuestionOrder, questionID) {
			return domain.NewNotFoundError(fmt.Sprintf("question %d is not part of sitting %d", questionID, sittingID))
		}

		if sitting.IsIncorrect(questionID) {
			if err := sitting.RemoveIncorrectQuestion(questionID); err != nil {
				return err
			}
		} else {
			sitting.AddIncorrectQuestion(questionID)
		}
		return s.sittingRepo.UpdateSitting(txCtx, sitting)
	})
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		return nil, domain.NewConflictError("the sitting was changed by another request, try again", err)
	}
	if err != nil {
		return nil, asDomainError("toggle question mark", err)
	}

	logger.Get().Info("Question mark toggled",
		zap.Int64("sitting_id", sittingID),
		zap.Int64("question_id", questionID),
		zap.Bool("incorrect", sitting.IsIncorrect(questionID)),
		zap.Int("score", sitting.CurrentScore))
	return s.detail(ctx, sitting)
}

// SuggestMark asks the marking assistant about an essay answer. The sitting
// is left untouched.
func (s *markingService) SuggestMark(ctx context.Context, sittingID, questionID int64) (*dto.MarkingSuggestionResponse, error) {
	if s.assistant == nil {
		return nil, domain.NewLLMServiceError(errors.New("no marking assistant is configured"))
	}

	sitting, err := s.completedSitting(ctx, sittingID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(sitting.QuestionOrder, questionID) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("question %d is not part of sitting %d", questionID, sittingID))
	}
	answer, ok := sitting.UserAnswers.Get(questionID)
	if !ok {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("question %d was not answered", questionID))
	}

	items, err := s.sittings.GetQuestionsOrdered(ctx, sitting, false)
	if err != nil {
		return nil, err
	}
	var question domain.Question
	for _, item := range items {
		if item.Question.Base().ID == questionID {
			question = item.Question
			break
		}
	}
	if question == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("question %d not found", questionID))
	}
	if question.Kind() != domain.KindEssay {
		return nil, domain.NewInvalidInputError("only essay answers need a marking suggestion")
	}

	suggestion, err := s.assistant.SuggestMark(ctx, question.Base().Content, question.Base().Explanation, answer)
	if err != nil {
		return nil, asDomainError("suggest mark", err)
	}
	return &dto.MarkingSuggestionResponse{
		SittingID:         sittingID,
		QuestionID:        questionID,
		MarkingSuggestion: *suggestion,
	}, nil
}
