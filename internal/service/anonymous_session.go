package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"quiz-sitting/internal/cache"
	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/logger"

	"go.uber.org/zap"
)

// AnonymousSessionStore keeps an anonymous taker's sittings in one Redis hash
// per session. Each quiz owns three fields: <id>_score, <id>_q_list and
// <id>_data.
type AnonymousSessionStore interface {
	// Load returns nil when the session holds no state for the quiz.
	Load(ctx context.Context, sessionID string, quiz *domain.Quiz) (*domain.Sitting, error)
	Save(ctx context.Context, sessionID string, quiz *domain.Quiz, s *domain.Sitting) error
	Clear(ctx context.Context, sessionID string, quiz *domain.Quiz) error
}

// anonymousData is the <id>_data field. The lists and answers keep the same
// text formats as the sittings table.
type anonymousData struct {
	Order       string    `json:"order"`
	Incorrect   string    `json:"incorrect"`
	UserAnswers string    `json:"user_answers"`
	Start       time.Time `json:"start"`
}

type anonymousSessionStore struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewAnonymousSessionStore(cache domain.Cache, ttl time.Duration) AnonymousSessionStore {
	return &anonymousSessionStore{cache: cache, ttl: ttl}
}

func (a *anonymousSessionStore) Load(ctx context.Context, sessionID string, quiz *domain.Quiz) (*domain.Sitting, error) {
	key := cache.AnonymousSessionKey(sessionID)
	fields, err := a.cache.HGetAll(ctx, key)
	if err != nil {
		logger.Named("anonymous").Error("Failed to read anonymous session", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError("failed to read anonymous session", err)
	}

	rawScore, hasScore := fields[quiz.AnonScoreKey()]
	rawList, hasList := fields[quiz.AnonQuestionListKey()]
	rawData, hasData := fields[quiz.AnonDataKey()]
	if !hasScore || !hasList || !hasData {
		return nil, nil
	}

	sitting, err := decodeAnonymousSitting(quiz, rawScore, rawList, rawData)
	if err != nil {
		// A corrupt entry is dropped so the taker can start over.
		logger.Named("anonymous").Warn("Discarding unreadable anonymous session state",
			zap.Error(err), zap.String("key", key), zap.Int64("quiz_id", quiz.ID))
		return nil, a.Clear(ctx, sessionID, quiz)
	}
	return sitting, nil
}

func decodeAnonymousSitting(quiz *domain.Quiz, rawScore, rawList, rawData string) (*domain.Sitting, error) {
	score, err := strconv.Atoi(rawScore)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	list, err := domain.ParseIDList(rawList)
	if err != nil {
		return nil, fmt.Errorf("question list: %w", err)
	}

	var data anonymousData
	if err := json.Unmarshal([]byte(rawData), &data); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	order, err := domain.ParseIDList(data.Order)
	if err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}
	incorrect, err := domain.ParseIDList(data.Incorrect)
	if err != nil {
		return nil, fmt.Errorf("incorrect questions: %w", err)
	}
	answers, err := domain.ParseAnswerLedger(data.UserAnswers)
	if err != nil {
		return nil, fmt.Errorf("user answers: %w", err)
	}

	return &domain.Sitting{
		QuizID:             quiz.ID,
		QuestionOrder:      order,
		QuestionList:       list,
		IncorrectQuestions: incorrect,
		CurrentScore:       score,
		UserAnswers:        answers,
		Start:              data.Start,
	}, nil
}

func (a *anonymousSessionStore) Save(ctx context.Context, sessionID string, quiz *domain.Quiz, s *domain.Sitting) error {
	data, err := json.Marshal(anonymousData{
		Order:       domain.EncodeIDList(s.QuestionOrder),
		Incorrect:   domain.EncodeIDList(s.IncorrectQuestions),
		UserAnswers: s.UserAnswers.String(),
		Start:       s.Start,
	})
	if err != nil {
		return domain.NewInternalError("failed to encode anonymous session", err)
	}

	key := cache.AnonymousSessionKey(sessionID)
	values := map[string]string{
		quiz.AnonScoreKey():        strconv.Itoa(s.CurrentScore),
		quiz.AnonQuestionListKey(): domain.EncodeIDList(s.QuestionList),
		quiz.AnonDataKey():         string(data),
	}
	if err := a.cache.HSetAll(ctx, key, values, a.ttl); err != nil {
		logger.Named("anonymous").Error("Failed to write anonymous session", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError("failed to write anonymous session", err)
	}
	return nil
}

func (a *anonymousSessionStore) Clear(ctx context.Context, sessionID string, quiz *domain.Quiz) error {
	key := cache.AnonymousSessionKey(sessionID)
	if err := a.cache.HDel(ctx, key, quiz.AnonScoreKey(), quiz.AnonQuestionListKey(), quiz.AnonDataKey()); err != nil {
		logger.Named("anonymous").Error("Failed to clear anonymous session", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError("failed to clear anonymous session", err)
	}
	return nil
}
