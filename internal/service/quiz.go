package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-sitting/internal/cache"
	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/dto"
	"quiz-sitting/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const categoryCacheTTL = 10 * time.Minute

// QuizService defines the catalogue and authoring operations
type QuizService interface {
	GetCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, name string) (*dto.CategoryResponse, error)
	CreateSubCategory(ctx context.Context, name, category string) (*dto.SubCategoryResponse, error)
	ListQuizzes(ctx context.Context, category string) ([]dto.QuizSummaryResponse, error)
	GetQuizDetail(ctx context.Context, slug string) (*dto.QuizDetailResponse, error)
	CreateQuiz(ctx context.Context, req *dto.QuizRequest) (*dto.QuizDetailResponse, error)
	UpdateQuiz(ctx context.Context, slug string, req *dto.QuizRequest) (*dto.QuizDetailResponse, error)
	DeleteQuiz(ctx context.Context, slug string) error
	AddQuestion(ctx context.Context, slug string, req *dto.QuestionRequest) (*dto.QuestionResponse, error)
}

// quizService implements QuizService
type quizService struct {
	categoryRepo domain.CategoryRepository
	quizRepo     domain.QuizRepository
	questionRepo domain.QuestionRepository
	txManager    domain.TransactionManager
	cache        domain.Cache // optional
	group        singleflight.Group
}

// NewQuizService creates a new instance of quizService
func NewQuizService(
	categoryRepo domain.CategoryRepository,
	quizRepo domain.QuizRepository,
	questionRepo domain.QuestionRepository,
	txManager domain.TransactionManager,
	cache domain.Cache,
) QuizService {
	return &quizService{
		categoryRepo: categoryRepo,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		txManager:    txManager,
		cache:        cache,
	}
}

// GetCategories serves the category list from the cache, loading it at most
// once per key when concurrent requests miss together.
func (s *quizService) GetCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	key := cache.CategoriesKey()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var categories []dto.CategoryResponse
			if jsonErr := json.Unmarshal([]byte(cached), &categories); jsonErr == nil {
				return categories, nil
			}
			logger.Get().Warn("Discarding unreadable category cache entry", zap.String("key", key))
		case !errors.Is(err, domain.ErrCacheMiss):
			logger.Get().Error("Failed to read category cache", zap.Error(err), zap.String("key", key))
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		categories, err := s.categoryRepo.GetAllCategories(ctx)
		if err != nil {
			return nil, domain.NewInternalError("failed to load categories", err)
		}
		resp := make([]dto.CategoryResponse, 0, len(categories))
		for _, c := range categories {
			resp = append(resp, dto.CategoryResponse{ID: c.ID, Name: c.Name})
		}
		s.storeCategories(ctx, key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dto.CategoryResponse), nil
}

func (s *quizService) storeCategories(ctx context.Context, key string, categories []dto.CategoryResponse) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(categories)
	if err != nil {
		logger.Get().Error("Failed to marshal categories for caching", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(data), categoryCacheTTL); err != nil {
		logger.Get().Error("Failed to cache categories", zap.Error(err), zap.String("key", key))
	}
}

func (s *quizService) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.CategoriesKey()); err != nil {
		logger.Get().Warn("Failed to invalidate category cache", zap.Error(err))
	}
}

func (s *quizService) CreateCategory(ctx context.Context, name string) (*dto.CategoryResponse, error) {
	category := domain.NewCategory(name)
	if err := category.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.GetCategoryByName(ctx, category.Name)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up category", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError(fmt.Sprintf("category %q already exists", category.Name), nil)
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		return nil, domain.NewInternalError("failed to save category", err)
	}
	s.invalidateCategories(ctx)

	logger.Get().Info("Category created", zap.Int64("id", category.ID), zap.String("category", category.Name))
	return &dto.CategoryResponse{ID: category.ID, Name: category.Name}, nil
}

func (s *quizService) CreateSubCategory(ctx context.Context, name, category string) (*dto.SubCategoryResponse, error) {
	var categoryID *int64
	if strings.TrimSpace(category) != "" {
		parent, err := s.resolveCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		categoryID = parent
	}

	sub := domain.NewSubCategory(name, categoryID)
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.GetSubCategoryByName(ctx, sub.Name)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up sub-category", err)
	}
	if existing != nil && sameCategory(existing.CategoryID, sub.CategoryID) {
		return nil, domain.NewConflictError(fmt.Sprintf("sub-category %q already exists", sub.Name), nil)
	}

	if err := s.categoryRepo.SaveSubCategory(ctx, sub); err != nil {
		return nil, domain.NewInternalError("failed to save sub-category", err)
	}
	return &dto.SubCategoryResponse{ID: sub.ID, CategoryID: sub.CategoryID, Name: sub.Name}, nil
}

func sameCategory(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// resolveCategory maps free text to the id of an existing category.
func (s *quizService) resolveCategory(ctx context.Context, name string) (*int64, error) {
	key := domain.NormalizeCategoryName(name)
	category, err := s.categoryRepo.GetCategoryByName(ctx, key)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up category", err)
	}
	if category == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("category %q not found", key))
	}
	return &category.ID, nil
}

func (s *quizService) resolveSubCategory(ctx context.Context, name string) (*int64, error) {
	key := domain.NormalizeCategoryName(name)
	sub, err := s.categoryRepo.GetSubCategoryByName(ctx, key)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up sub-category", err)
	}
	if sub == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("sub-category %q not found", key))
	}
	return &sub.ID, nil
}

func (s *quizService) ListQuizzes(ctx context.Context, category string) ([]dto.QuizSummaryResponse, error) {
	var filter domain.QuizFilter
	if strings.TrimSpace(category) != "" {
		id, err := s.resolveCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		filter.CategoryID = id
	}

	quizzes, err := s.quizRepo.ListQuizzes(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes", err)
	}
	resp := make([]dto.QuizSummaryResponse, 0, len(quizzes))
	for _, q := range quizzes {
		resp = append(resp, toQuizSummary(q))
	}
	return resp, nil
}

func (s *quizService) GetQuizDetail(ctx context.Context, slug string) (*dto.QuizDetailResponse, error) {
	quiz, err := s.quizRepo.GetQuizBySlug(ctx, slug)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil || quiz.Draft {
		return nil, domain.NewQuizNotFoundError(slug)
	}
	return s.quizDetail(ctx, quiz)
}

func (s *quizService) quizDetail(ctx context.Context, quiz *domain.Quiz) (*dto.QuizDetailResponse, error) {
	count := 0
	if quiz.ID != 0 {
		n, err := s.questionRepo.CountQuestionsByQuiz(ctx, quiz.ID)
		if err != nil {
			return nil, domain.NewInternalError("failed to count questions", err)
		}
		count = n
	}
	maxScore := count
	if quiz.MaxQuestions > 0 && quiz.MaxQuestions < count {
		maxScore = quiz.MaxQuestions
	}
	return &dto.QuizDetailResponse{
		QuizSummaryResponse: toQuizSummary(quiz),
		RandomOrder:         quiz.RandomOrder,
		AnswersAtEnd:        quiz.AnswersAtEnd,
		MaxQuestions:        quiz.MaxQuestions,
		QuestionCount:       count,
		MaxScore:            maxScore,
		Draft:               quiz.Draft,
	}, nil
}

func (s *quizService) applyQuizRequest(ctx context.Context, quiz *domain.Quiz, req *dto.QuizRequest) error {
	quiz.Title = strings.TrimSpace(req.Title)
	quiz.Description = req.Description
	quiz.URL = req.URL
	quiz.RandomOrder = req.RandomOrder
	quiz.MaxQuestions = req.MaxQuestions
	quiz.AnswersAtEnd = req.AnswersAtEnd
	quiz.ExamPaper = req.ExamPaper
	quiz.SingleAttempt = req.SingleAttempt
	quiz.PassMark = req.PassMark
	quiz.SuccessText = req.SuccessText
	quiz.FailText = req.FailText
	quiz.Draft = req.Draft

	quiz.CategoryID = nil
	if strings.TrimSpace(req.Category) != "" {
		id, err := s.resolveCategory(ctx, req.Category)
		if err != nil {
			return err
		}
		quiz.CategoryID = id
	}
	return quiz.Prepare()
}

func (s *quizService) CreateQuiz(ctx context.Context, req *dto.QuizRequest) (*dto.QuizDetailResponse, error) {
	now := time.Now()
	quiz := &domain.Quiz{CreatedAt: now, UpdatedAt: now}
	if err := s.applyQuizRequest(ctx, quiz, req); err != nil {
		return nil, err
	}

	existing, err := s.quizRepo.GetQuizBySlug(ctx, quiz.URL)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up quiz", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError(fmt.Sprintf("quiz url %q is taken", quiz.URL), nil)
	}

	if err := s.quizRepo.SaveQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("failed to save quiz", err)
	}
	logger.Get().Info("Quiz created", zap.Int64("id", quiz.ID), zap.String("url", quiz.URL))
	return s.quizDetail(ctx, quiz)
}

func (s *quizService) UpdateQuiz(ctx context.Context, slug string, req *dto.QuizRequest) (*dto.QuizDetailResponse, error) {
	quiz, err := s.quizRepo.GetQuizBySlug(ctx, slug)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(slug)
	}

	if err := s.applyQuizRequest(ctx, quiz, req); err != nil {
		return nil, err
	}
	if quiz.URL != slug {
		other, err := s.quizRepo.GetQuizBySlug(ctx, quiz.URL)
		if err != nil {
			return nil, domain.NewInternalError("failed to look up quiz", err)
		}
		if other != nil && other.ID != quiz.ID {
			return nil, domain.NewConflictError(fmt.Sprintf("quiz url %q is taken", quiz.URL), nil)
		}
	}
	quiz.UpdatedAt = time.Now()

	if err := s.quizRepo.UpdateQuiz(ctx, quiz); err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewInternalError("failed to update quiz", err)
	}
	return s.quizDetail(ctx, quiz)
}

func (s *quizService) DeleteQuiz(ctx context.Context, slug string) error {
	quiz, err := s.quizRepo.GetQuizBySlug(ctx, slug)
	if err != nil {
		return domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return domain.NewQuizNotFoundError(slug)
	}
	if err := s.quizRepo.DeleteQuiz(ctx, quiz.ID); err != nil {
		return domain.NewInternalError("failed to delete quiz", err)
	}
	logger.Get().Info("Quiz deleted", zap.Int64("id", quiz.ID), zap.String("url", slug))
	return nil
}

// AddQuestion builds the requested variant, validates it and stores it with
// its answers in one transaction.
func (s *quizService) AddQuestion(ctx context.Context, slug string, req *dto.QuestionRequest) (*dto.QuestionResponse, error) {
	quiz, err := s.quizRepo.GetQuizBySlug(ctx, slug)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(slug)
	}

	kind, err := domain.ParseQuestionKind(req.Kind)
	if err != nil {
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("kind", req.Kind)}
	}

	base := domain.QuestionBase{
		QuizID:      quiz.ID,
		Figure:      strings.TrimSpace(req.Figure),
		Content:     req.Content,
		Explanation: req.Explanation,
		CreatedAt:   time.Now(),
	}
	if strings.TrimSpace(req.Category) != "" {
		if base.CategoryID, err = s.resolveCategory(ctx, req.Category); err != nil {
			return nil, err
		}
		base.CategoryName = domain.NormalizeCategoryName(req.Category)
	}
	if strings.TrimSpace(req.SubCategory) != "" {
		if base.SubCategoryID, err = s.resolveSubCategory(ctx, req.SubCategory); err != nil {
			return nil, err
		}
	}

	var question domain.Question
	switch kind {
	case domain.KindMultipleChoice:
		mc := &domain.MultipleChoiceQuestion{QuestionBase: base, AnswerOrder: domain.AnswerOrder(req.AnswerOrder)}
		for _, a := range req.Answers {
			mc.Options = append(mc.Options, domain.Answer{Content: a.Content, Correct: a.Correct})
		}
		question = mc
	case domain.KindTrueFalse:
		question = &domain.TrueFalseQuestion{QuestionBase: base, Correct: req.Correct}
	default:
		question = &domain.EssayQuestion{QuestionBase: base}
	}

	if err := domain.ValidateQuestion(question); err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.questionRepo.SaveQuestion(txCtx, question)
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to save question", err)
	}
	return toQuestionResponse(question), nil
}
