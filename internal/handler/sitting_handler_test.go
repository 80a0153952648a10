package handler_test

import (
	"context"
	"testing"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/dto"
	"quiz-sitting/internal/handler"
	"quiz-sitting/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionID = "01HXQ0Z8VNRYXS8QKNJV5GRWPW"

func TestSittingHandler_TakeQuizSignedIn(t *testing.T) {
	app, svcs := newTestApp()
	svcs.sitting.TakeQuizFunc = func(ctx context.Context, taker service.Taker, slug string) (*dto.TakeQuizResponse, error) {
		assert.Equal(t, service.Taker{UserID: "u1"}, taker)
		assert.Equal(t, "rome", slug)
		return &dto.TakeQuizResponse{SittingID: 10, Question: &dto.QuestionResponse{ID: 1, Kind: "true_false"}, Progress: dto.ProgressInfo{Total: 2}}, nil
	}

	resp, err := app.Test(jsonRequest("GET", "/api/quizzes/rome/take", nil, "user"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(handler.AnonymousSessionHeader))

	var body dto.TakeQuizResponse
	decode(t, resp.Body, &body)
	assert.Equal(t, int64(10), body.SittingID)
	assert.Equal(t, int64(1), body.Question.ID)
}

func TestSittingHandler_TakeQuizEditorMayTakeDrafts(t *testing.T) {
	app, svcs := newTestApp()
	svcs.sitting.TakeQuizFunc = func(ctx context.Context, taker service.Taker, slug string) (*dto.TakeQuizResponse, error) {
		assert.Equal(t, service.Taker{UserID: "editor1", CanEdit: true}, taker)
		return &dto.TakeQuizResponse{SittingID: 11, Question: &dto.QuestionResponse{ID: 1, Kind: "true_false"}}, nil
	}

	resp, err := app.Test(jsonRequest("GET", "/api/quizzes/wip/take", nil, "editor"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSittingHandler_TakeQuizAnonymousEchoesSession(t *testing.T) {
	app, svcs := newTestApp()
	svcs.sitting.TakeQuizFunc = func(ctx context.Context, taker service.Taker, slug string) (*dto.TakeQuizResponse, error) {
		assert.True(t, taker.IsAnonymous())
		assert.Empty(t, taker.SessionID)
		return &dto.TakeQuizResponse{SessionID: sessionID}, nil
	}

	resp, err := app.Test(jsonRequest("GET", "/api/quizzes/rome/take", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, sessionID, resp.Header.Get(handler.AnonymousSessionHeader))
}

func TestSittingHandler_TakeQuizSingleAttemptUsed(t *testing.T) {
	app, svcs := newTestApp()
	svcs.sitting.TakeQuizFunc = func(ctx context.Context, taker service.Taker, slug string) (*dto.TakeQuizResponse, error) {
		return nil, domain.NewAttemptNotAllowedError(slug)
	}

	resp, err := app.Test(jsonRequest("GET", "/api/quizzes/rome/take", nil, "user"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSittingHandler_SubmitAnswer(t *testing.T) {
	app, svcs := newTestApp()
	svcs.sitting.SubmitAnswerFunc = func(ctx context.Context, taker service.Taker, slug string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
		assert.Equal(t, sessionID, taker.SessionID)
		assert.Equal(t, int64(1), req.QuestionID)
		assert.Equal(t, "True", req.Guess)
		return &dto.SubmitAnswerResponse{
			SessionID: taker.SessionID,
			Feedback:  &dto.AnswerFeedback{QuestionID: 1, Guess: "True", Correct: true},
			Progress:  dto.ProgressInfo{Answered: 1, Total: 2},
		}, nil
	}

	req := jsonRequest("POST", "/api/quizzes/rome/take", dto.SubmitAnswerRequest{QuestionID: 1, Guess: "True"}, "")
	req.Header.Set(handler.AnonymousSessionHeader, sessionID)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.SubmitAnswerResponse
	decode(t, resp.Body, &body)
	assert.True(t, body.Feedback.Correct)
	assert.Equal(t, 1, body.Progress.Answered)
}

func TestSittingHandler_SubmitAnswerErrors(t *testing.T) {
	app, svcs := newTestApp()
	svcs.sitting.SubmitAnswerFunc = func(ctx context.Context, taker service.Taker, slug string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
		switch req.Guess {
		case "Maybe":
			return nil, domain.NewInvalidAnswerError(`"Maybe" is not one of the choices`)
		default:
			return nil, domain.NewConflictError("the sitting was changed by another request, try again", domain.ErrConcurrentUpdate)
		}
	}

	tests := []struct {
		name           string
		guess          string
		expectedStatus int
	}{
		{name: "empty guess", guess: "  ", expectedStatus: fiber.StatusBadRequest},
		{name: "unknown choice", guess: "Maybe", expectedStatus: fiber.StatusBadRequest},
		{name: "conflict", guess: "True", expectedStatus: fiber.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest("POST", "/api/quizzes/rome/take", dto.SubmitAnswerRequest{Guess: tc.guess}, "user"))
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}
}

func TestSittingHandler_FinishSitting(t *testing.T) {
	app, svcs := newTestApp()
	svcs.sitting.FinishSittingFunc = func(ctx context.Context, taker service.Taker, slug string) (*dto.SittingResultResponse, error) {
		return &dto.SittingResultResponse{Score: 1, MaxScore: 2, Percent: 50, Passed: false, Message: "Keep practising"}, nil
	}

	resp, err := app.Test(jsonRequest("POST", "/api/quizzes/rome/finish", nil, "user"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result dto.SittingResultResponse
	decode(t, resp.Body, &result)
	assert.Equal(t, 50, result.Percent)
}

func TestProgressHandler_RequiresLogin(t *testing.T) {
	app, svcs := newTestApp()
	svcs.progress.GetProgressFunc = func(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
		assert.Equal(t, "u1", userID)
		return &dto.ProgressResponse{
			Categories: []domain.CategoryScore{{Category: "history", Score: 3, Possible: 4, Percent: 75}},
			Exams:      []dto.SittingSummaryResponse{},
		}, nil
	}

	resp, err := app.Test(jsonRequest("GET", "/api/progress", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest("GET", "/api/progress", nil, "user"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.ProgressResponse
	decode(t, resp.Body, &body)
	assert.Equal(t, 75, body.Categories[0].Percent)
}
