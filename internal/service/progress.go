package service

import (
	"context"
	"errors"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/dto"
	"quiz-sitting/internal/logger"

	"go.uber.org/zap"
)

// ProgressService keeps the per-user category score ledger.
type ProgressService interface {
	// UpdateScore adds to the ledger entry of the question's category. Questions
	// without an existing category are skipped.
	UpdateScore(ctx context.Context, userID string, q domain.Question, scoreDelta, possibleDelta int) error
	CategoryScores(ctx context.Context, userID string) ([]domain.CategoryScore, error)
	ShowExams(ctx context.Context, userID string) ([]*domain.Sitting, error)
	GetProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error)
}

type progressService struct {
	progressRepo domain.ProgressRepository
	categoryRepo domain.CategoryRepository
	sittingRepo  domain.SittingRepository
	quizRepo     domain.QuizRepository
}

func NewProgressService(
	progressRepo domain.ProgressRepository,
	categoryRepo domain.CategoryRepository,
	sittingRepo domain.SittingRepository,
	quizRepo domain.QuizRepository,
) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		categoryRepo: categoryRepo,
		sittingRepo:  sittingRepo,
		quizRepo:     quizRepo,
	}
}

// UpdateScore relies on the question's CategoryName, which the question
// repository only fills in when the category row exists.
func (s *progressService) UpdateScore(ctx context.Context, userID string, q domain.Question, scoreDelta, possibleDelta int) error {
	category := q.Base().CategoryName
	if category == "" {
		logger.Get().Debug("Skipping progress update for question without category",
			zap.Int64("question_id", q.Base().ID), zap.String("user_id", userID))
		return nil
	}

	progress, err := s.progressRepo.GetProgressByUser(ctx, userID)
	if err != nil {
		return domain.NewInternalError("failed to load progress", err)
	}
	if progress == nil {
		progress = domain.NewProgress(userID)
		progress.UpdateScore(category, scoreDelta, possibleDelta)
		if err := s.progressRepo.CreateProgress(ctx, progress); err != nil {
			if errors.Is(err, domain.ErrConcurrentUpdate) {
				return err
			}
			return domain.NewInternalError("failed to create progress", err)
		}
		return nil
	}

	if !progress.UpdateScore(category, scoreDelta, possibleDelta) {
		return nil
	}
	// ErrConcurrentUpdate is returned unwrapped so callers can retry.
	return s.progressRepo.UpdateProgress(ctx, progress)
}

func (s *progressService) CategoryScores(ctx context.Context, userID string) ([]domain.CategoryScore, error) {
	categories, err := s.categoryRepo.GetAllCategories(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to load categories", err)
	}
	known := make([]string, 0, len(categories))
	for _, c := range categories {
		known = append(known, c.Name)
	}

	progress, err := s.progressRepo.GetProgressByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load progress", err)
	}
	if progress == nil {
		progress = domain.NewProgress(userID)
	}
	return progress.CategoryScores(known), nil
}

func (s *progressService) ShowExams(ctx context.Context, userID string) ([]*domain.Sitting, error) {
	sittings, err := s.sittingRepo.ListCompletedSittings(ctx, domain.SittingFilter{UserID: userID, ExamOnly: true})
	if err != nil {
		return nil, domain.NewInternalError("failed to list exams", err)
	}
	return sittings, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	scores, err := s.CategoryScores(ctx, userID)
	if err != nil {
		return nil, err
	}
	exams, err := s.ShowExams(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries, err := summarizeSittings(ctx, s.quizRepo, exams)
	if err != nil {
		return nil, err
	}
	return &dto.ProgressResponse{Categories: scores, Exams: summaries}, nil
}

// summarizeSittings renders sittings with their quiz titles, loading each quiz once.
func summarizeSittings(ctx context.Context, quizRepo domain.QuizRepository, sittings []*domain.Sitting) ([]dto.SittingSummaryResponse, error) {
	quizzes := make(map[int64]*domain.Quiz)
	out := make([]dto.SittingSummaryResponse, 0, len(sittings))
	for _, sitting := range sittings {
		quiz, seen := quizzes[sitting.QuizID]
		if !seen {
			q, err := quizRepo.GetQuizByID(ctx, sitting.QuizID)
			if err != nil {
				return nil, domain.NewInternalError("failed to load quiz", err)
			}
			quizzes[sitting.QuizID] = q
			quiz = q
		}
		out = append(out, toSittingSummary(sitting, quiz))
	}
	return out, nil
}
