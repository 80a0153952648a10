package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/dto"
	"quiz-sitting/internal/logger"
	"quiz-sitting/internal/util"

	"go.uber.org/zap"
)

const maxSubmitAttempts = 3

// Taker identifies who is sitting a quiz: a signed-in user, or an anonymous
// session when UserID is empty.
type Taker struct {
	UserID    string
	SessionID string
	// CanEdit is set for users holding the editor permission; they may take drafts.
	CanEdit bool
}

func (t Taker) IsAnonymous() bool {
	return t.UserID == ""
}

// SittingService drives a taker through a quiz one question at a time.
type SittingService interface {
	// GetOrCreateSitting resumes the user's open sitting or starts one.
	// allowed is false when a single-attempt quiz was already completed.
	GetOrCreateSitting(ctx context.Context, userID string, quiz *domain.Quiz) (sitting *domain.Sitting, allowed bool, err error)
	TakeQuiz(ctx context.Context, taker Taker, slug string) (*dto.TakeQuizResponse, error)
	SubmitAnswer(ctx context.Context, taker Taker, slug string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	FinishSitting(ctx context.Context, taker Taker, slug string) (*dto.SittingResultResponse, error)
	GetQuestionsOrdered(ctx context.Context, sitting *domain.Sitting, withAnswers bool) ([]domain.SittingQuestion, error)
}

type sittingService struct {
	quizRepo     domain.QuizRepository
	questionRepo domain.QuestionRepository
	sittingRepo  domain.SittingRepository
	txManager    domain.TransactionManager
	progress     ProgressService
	anonymous    AnonymousSessionStore // nil disables anonymous taking
	now          func() time.Time
}

func NewSittingService(
	quizRepo domain.QuizRepository,
	questionRepo domain.QuestionRepository,
	sittingRepo domain.SittingRepository,
	txManager domain.TransactionManager,
	progress ProgressService,
	anonymous AnonymousSessionStore,
) SittingService {
	return &sittingService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		sittingRepo:  sittingRepo,
		txManager:    txManager,
		progress:     progress,
		anonymous:    anonymous,
		now:          time.Now,
	}
}

func (s *sittingService) loadQuiz(ctx context.Context, slug string, taker Taker) (*domain.Quiz, error) {
	quiz, err := s.quizRepo.GetQuizBySlug(ctx, slug)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil || (quiz.Draft && (taker.IsAnonymous() || !taker.CanEdit)) {
		return nil, domain.NewQuizNotFoundError(slug)
	}
	return quiz, nil
}

func (s *sittingService) loadQuestion(ctx context.Context, id int64) (domain.Question, error) {
	q, err := s.questionRepo.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get question", err)
	}
	if q == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("question %d not found", id))
	}
	return q, nil
}

func (s *sittingService) newSitting(ctx context.Context, userID string, quiz *domain.Quiz) (*domain.Sitting, error) {
	ids, err := s.questionRepo.GetQuestionIDsByQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quiz questions", err)
	}
	return domain.NewSitting(userID, quiz, ids, s.now())
}

// pickSitting returns the lowest-id open sitting.
func pickSitting(open []*domain.Sitting, userID string, quiz *domain.Quiz) *domain.Sitting {
	if len(open) == 0 {
		return nil
	}
	if len(open) > 1 {
		logger.Get().Warn("Multiple incomplete sittings found, using the oldest",
			zap.String("user_id", userID),
			zap.Int64("quiz_id", quiz.ID),
			zap.Int("count", len(open)),
			zap.Int64("sitting_id", open[0].ID))
	}
	return open[0]
}

func (s *sittingService) GetOrCreateSitting(ctx context.Context, userID string, quiz *domain.Quiz) (*domain.Sitting, bool, error) {
	if quiz.SingleAttempt {
		done, err := s.sittingRepo.HasCompletedSitting(ctx, userID, quiz.ID)
		if err != nil {
			return nil, false, domain.NewInternalError("failed to check previous sittings", err)
		}
		if done {
			return nil, false, nil
		}
	}

	open, err := s.sittingRepo.FindIncompleteSittings(ctx, userID, quiz.ID)
	if err != nil {
		return nil, false, domain.NewInternalError("failed to find open sittings", err)
	}
	if sitting := pickSitting(open, userID, quiz); sitting != nil {
		return sitting, true, nil
	}

	sitting, err := s.newSitting(ctx, userID, quiz)
	if err != nil {
		return nil, false, err
	}
	if err := s.sittingRepo.CreateSitting(ctx, sitting); err != nil {
		return nil, false, domain.NewInternalError("failed to create sitting", err)
	}
	logger.Get().Info("Sitting started",
		zap.Int64("sitting_id", sitting.ID),
		zap.String("user_id", userID),
		zap.Int64("quiz_id", quiz.ID),
		zap.Int("questions", len(sitting.QuestionOrder)))
	return sitting, true, nil
}

func (s *sittingService) TakeQuiz(ctx context.Context, taker Taker, slug string) (*dto.TakeQuizResponse, error) {
	quiz, err := s.loadQuiz(ctx, slug, taker)
	if err != nil {
		return nil, err
	}
	if taker.IsAnonymous() {
		return s.takeAnonymous(ctx, taker.SessionID, quiz)
	}

	var resp *dto.TakeQuizResponse
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		sitting, allowed, err := s.GetOrCreateSitting(txCtx, taker.UserID, quiz)
		if err != nil {
			return err
		}
		if !allowed {
			return domain.NewAttemptNotAllowedError(quiz.URL)
		}
		resp, err = s.takeResponse(txCtx, quiz, sitting)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *sittingService) takeAnonymous(ctx context.Context, sessionID string, quiz *domain.Quiz) (*dto.TakeQuizResponse, error) {
	if s.anonymous == nil {
		return nil, domain.NewError(domain.CodeUnauthorized, "sign in to take this quiz", nil)
	}
	if quiz.SingleAttempt {
		return nil, domain.NewAttemptNotAllowedError(quiz.URL)
	}
	if !util.IsULID(sessionID) {
		sessionID = util.NewULID()
	}

	sitting, err := s.anonymous.Load(ctx, sessionID, quiz)
	if err != nil {
		return nil, err
	}
	if sitting == nil {
		if sitting, err = s.newSitting(ctx, "", quiz); err != nil {
			return nil, err
		}
		if err := s.anonymous.Save(ctx, sessionID, quiz, sitting); err != nil {
			return nil, err
		}
	}

	resp, err := s.takeResponse(ctx, quiz, sitting)
	if err != nil {
		return nil, err
	}
	resp.SessionID = sessionID
	return resp, nil
}

func (s *sittingService) takeResponse(ctx context.Context, quiz *domain.Quiz, sitting *domain.Sitting) (*dto.TakeQuizResponse, error) {
	resp := &dto.TakeQuizResponse{
		Quiz:      toQuizSummary(quiz),
		SittingID: sitting.ID,
		Progress:  progressInfo(sitting),
	}

	headID, err := sitting.FirstQuestionID()
	if errors.Is(err, domain.ErrNoMoreQuestions) {
		resp.Result, err = s.buildResult(ctx, quiz, sitting)
		return resp, err
	}

	question, err := s.loadQuestion(ctx, headID)
	if err != nil {
		return nil, err
	}
	resp.Question = toQuestionResponse(question)
	return resp, nil
}

// currentSitting finds the sitting an answer or finish request applies to.
func (s *sittingService) currentSitting(ctx context.Context, userID string, quiz *domain.Quiz) (*domain.Sitting, error) {
	open, err := s.sittingRepo.FindIncompleteSittings(ctx, userID, quiz.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to find open sittings", err)
	}
	sitting := pickSitting(open, userID, quiz)
	if sitting == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("no sitting in progress for quiz %q", quiz.URL))
	}
	return sitting, nil
}

// withRetry runs fn in a transaction, starting over when a versioned write
// loses a race.
func (s *sittingService) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := s.txManager.WithTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			return asDomainError(op, err)
		}
		if attempt >= maxSubmitAttempts {
			return domain.NewConflictError("the sitting was changed by another request, try again", err)
		}
		logger.Get().Warn("Concurrent sitting update, retrying",
			zap.String("op", op), zap.Int("attempt", attempt))
	}
}

// asDomainError passes domain errors through and wraps everything else.
func asDomainError(op string, err error) error {
	var domainErr *domain.DomainError
	var validationErrs domain.ValidationErrors
	if errors.As(err, &domainErr) || errors.As(err, &validationErrs) {
		return err
	}
	return domain.NewInternalError("failed to "+op, err)
}

func (s *sittingService) SubmitAnswer(ctx context.Context, taker Taker, slug string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	quiz, err := s.loadQuiz(ctx, slug, taker)
	if err != nil {
		return nil, err
	}
	if taker.IsAnonymous() {
		return s.submitAnonymous(ctx, taker.SessionID, quiz, req)
	}

	var resp *dto.SubmitAnswerResponse
	err = s.withRetry(ctx, "submit answer", func(txCtx context.Context) error {
		sitting, err := s.currentSitting(txCtx, taker.UserID, quiz)
		if err != nil {
			return err
		}
		r, question, correct, err := s.applyAnswer(txCtx, quiz, sitting, req)
		if err != nil {
			return err
		}
		if err := s.sittingRepo.UpdateSitting(txCtx, sitting); err != nil {
			return err
		}

		scoreDelta := 0
		if correct {
			scoreDelta = 1
		}
		if err := s.progress.UpdateScore(txCtx, taker.UserID, question, scoreDelta, 1); err != nil {
			return err
		}

		if sitting.Complete {
			if err := s.discardUnlessExam(txCtx, quiz, sitting); err != nil {
				return err
			}
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *sittingService) submitAnonymous(ctx context.Context, sessionID string, quiz *domain.Quiz, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	if quiz.SingleAttempt {
		return nil, domain.NewAttemptNotAllowedError(quiz.URL)
	}
	sitting, err := s.loadAnonymous(ctx, sessionID, quiz)
	if err != nil {
		return nil, err
	}

	resp, _, _, err := s.applyAnswer(ctx, quiz, sitting, req)
	if err != nil {
		return nil, err
	}
	if sitting.Complete {
		err = s.anonymous.Clear(ctx, sessionID, quiz)
	} else {
		err = s.anonymous.Save(ctx, sessionID, quiz, sitting)
	}
	if err != nil {
		return nil, err
	}
	resp.SessionID = sessionID
	return resp, nil
}

func (s *sittingService) loadAnonymous(ctx context.Context, sessionID string, quiz *domain.Quiz) (*domain.Sitting, error) {
	notFound := domain.NewNotFoundError(fmt.Sprintf("no sitting in progress for quiz %q", quiz.URL))
	if s.anonymous == nil || !util.IsULID(sessionID) {
		return nil, notFound
	}
	sitting, err := s.anonymous.Load(ctx, sessionID, quiz)
	if err != nil {
		return nil, err
	}
	if sitting == nil {
		return nil, notFound
	}
	return sitting, nil
}

// normalizeGuess trims the guess and, for questions with fixed choices,
// requires it to name one of them.
func normalizeGuess(q domain.Question, raw string) (string, error) {
	guess := strings.TrimSpace(raw)
	if guess == "" {
		return "", domain.NewInvalidAnswerError("an answer is required")
	}
	choices := q.AnswersList()
	if len(choices) == 0 {
		return guess, nil
	}
	for _, c := range choices {
		if strings.EqualFold(c.Value, guess) {
			return c.Value, nil
		}
	}
	return "", domain.NewInvalidAnswerError(fmt.Sprintf("%q is not one of the offered answers", guess))
}

// applyAnswer scores the guess against the head question and advances the
// sitting, completing it when no question is left.
func (s *sittingService) applyAnswer(ctx context.Context, quiz *domain.Quiz, sitting *domain.Sitting, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, domain.Question, bool, error) {
	headID, err := sitting.FirstQuestionID()
	if err != nil {
		return nil, nil, false, domain.NewInvalidAnswerError("no question is waiting for an answer")
	}
	if req.QuestionID != 0 && req.QuestionID != headID {
		return nil, nil, false, domain.NewInvalidAnswerError(fmt.Sprintf("question %d is not the current question", req.QuestionID))
	}

	question, err := s.loadQuestion(ctx, headID)
	if err != nil {
		return nil, nil, false, err
	}
	guess, err := normalizeGuess(question, req.Guess)
	if err != nil {
		return nil, nil, false, err
	}

	correct := question.CheckIfCorrect(guess)
	if correct {
		sitting.AddToScore(1)
	} else {
		sitting.AddIncorrectQuestion(headID)
	}
	sitting.RecordAnswer(headID, guess)
	sitting.RemoveFirstQuestion()

	resp := &dto.SubmitAnswerResponse{}
	if !quiz.AnswersAtEnd {
		resp.Feedback = &dto.AnswerFeedback{
			QuestionID:  headID,
			Guess:       question.AnswerChoiceToString(guess),
			Correct:     correct,
			Answers:     question.Answers(),
			Explanation: question.Base().Explanation,
		}
	}

	if len(sitting.QuestionList) == 0 {
		sitting.MarkComplete(s.now())
		if resp.Result, err = s.buildResult(ctx, quiz, sitting); err != nil {
			return nil, nil, false, err
		}
	} else {
		next, err := s.loadQuestion(ctx, sitting.QuestionList[0])
		if err != nil {
			return nil, nil, false, err
		}
		resp.Next = toQuestionResponse(next)
	}
	resp.Progress = progressInfo(sitting)
	return resp, question, correct, nil
}

func (s *sittingService) buildResult(ctx context.Context, quiz *domain.Quiz, sitting *domain.Sitting) (*dto.SittingResultResponse, error) {
	passed := sitting.CheckIfPassed(quiz.PassMark)
	result := &dto.SittingResultResponse{
		Score:    sitting.CurrentScore,
		MaxScore: sitting.MaxScore(),
		Percent:  sitting.PercentCorrect(),
		Passed:   passed,
		Message:  quiz.ResultMessage(passed),
	}
	if quiz.AnswersAtEnd {
		items, err := s.GetQuestionsOrdered(ctx, sitting, true)
		if err != nil {
			return nil, err
		}
		result.Questions = toSittingQuestions(items)
	}
	return result, nil
}

// discardUnlessExam deletes a completed sitting of a quiz that is not an
// exam paper. Only exam sittings are kept for marking.
func (s *sittingService) discardUnlessExam(ctx context.Context, quiz *domain.Quiz, sitting *domain.Sitting) error {
	if quiz.ExamPaper {
		return nil
	}
	if err := s.sittingRepo.DeleteSitting(ctx, sitting.ID); err != nil {
		return err
	}
	logger.Get().Debug("Discarded completed practice sitting",
		zap.Int64("sitting_id", sitting.ID), zap.Int64("quiz_id", quiz.ID))
	return nil
}

func (s *sittingService) FinishSitting(ctx context.Context, taker Taker, slug string) (*dto.SittingResultResponse, error) {
	quiz, err := s.loadQuiz(ctx, slug, taker)
	if err != nil {
		return nil, err
	}

	if taker.IsAnonymous() {
		sitting, err := s.loadAnonymous(ctx, taker.SessionID, quiz)
		if err != nil {
			return nil, err
		}
		sitting.AbandonRemaining()
		sitting.MarkComplete(s.now())
		result, err := s.buildResult(ctx, quiz, sitting)
		if err != nil {
			return nil, err
		}
		if err := s.anonymous.Clear(ctx, taker.SessionID, quiz); err != nil {
			return nil, err
		}
		return result, nil
	}

	var result *dto.SittingResultResponse
	err = s.withRetry(ctx, "finish sitting", func(txCtx context.Context) error {
		sitting, err := s.currentSitting(txCtx, taker.UserID, quiz)
		if err != nil {
			return err
		}
		sitting.AbandonRemaining()
		sitting.MarkComplete(s.now())
		if err := s.sittingRepo.UpdateSitting(txCtx, sitting); err != nil {
			return err
		}
		if result, err = s.buildResult(txCtx, quiz, sitting); err != nil {
			return err
		}
		return s.discardUnlessExam(txCtx, quiz, sitting)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *sittingService) GetQuestionsOrdered(ctx context.Context, sitting *domain.Sitting, withAnswers bool) ([]domain.SittingQuestion, error) {
	questions, err := s.questionRepo.GetQuestionsByIDs(ctx, sitting.QuestionOrder)
	if err != nil {
		return nil, domain.NewInternalError("failed to load sitting questions", err)
	}
	return sitting.OrderQuestions(questions, withAnswers), nil
}
