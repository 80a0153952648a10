package handler

import (
	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/dto"
	"quiz-sitting/internal/logger"
	"quiz-sitting/internal/middleware"
	"quiz-sitting/internal/service"
	"quiz-sitting/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AnonymousSessionHeader carries the anonymous session id between requests.
const AnonymousSessionHeader = "X-Anonymous-Session"

// SittingHandler handles taking a quiz
type SittingHandler struct {
	service          service.SittingService
	validator        *validation.Validator
	editorPermission string
}

// NewSittingHandler builds the handler. Holders of editorPermission may take
// draft quizzes.
func NewSittingHandler(service service.SittingService, editorPermission string) *SittingHandler {
	return &SittingHandler{service: service, validator: validation.NewValidator(), editorPermission: editorPermission}
}

func (h *SittingHandler) takerFrom(c *fiber.Ctx) service.Taker {
	return service.Taker{
		UserID:    middleware.UserID(c),
		SessionID: c.Get(AnonymousSessionHeader),
		CanEdit:   h.editorPermission != "" && middleware.HasPermission(c, h.editorPermission),
	}
}

// echoSession hands the anonymous session id back so the client can keep it.
func echoSession(c *fiber.Ctx, sessionID string) {
	if sessionID != "" {
		c.Set(AnonymousSessionHeader, sessionID)
	}
}

// TakeQuiz godoc
// @Summary Start or resume a quiz
// @Description Returns the next question of the caller's sitting. Anonymous callers get a session id to send back in X-Anonymous-Session.
// @Tags sitting
// @Produce json
// @Param slug path string true "Quiz url"
// @Param X-Anonymous-Session header string false "Anonymous session id"
// @Success 200 {object} dto.TakeQuizResponse
// @Failure 403 {object} middleware.ErrorResponse "Single attempt already used"
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{slug}/take [get]
func (h *SittingHandler) TakeQuiz(c *fiber.Ctx) error {
	resp, err := h.service.TakeQuiz(c.Context(), h.takerFrom(c), middleware.ValidatedSlug(c))
	if err != nil {
		return err
	}
	echoSession(c, resp.SessionID)
	return c.JSON(resp)
}

// SubmitAnswer godoc
// @Summary Answer the current question
// @Tags sitting
// @Accept json
// @Produce json
// @Param slug path string true "Quiz url"
// @Param X-Anonymous-Session header string false "Anonymous session id"
// @Param request body dto.SubmitAnswerRequest true "Guess"
// @Success 200 {object} dto.SubmitAnswerResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes/{slug}/take [post]
func (h *SittingHandler) SubmitAnswer(c *fiber.Ctx) error {
	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("request body is not valid JSON")
	}
	if errs := h.validator.ValidateGuess(req.Guess); len(errs) > 0 {
		return errs
	}

	taker := h.takerFrom(c)
	resp, err := h.service.SubmitAnswer(c.Context(), taker, middleware.ValidatedSlug(c), &req)
	if err != nil {
		logger.Get().Debug("Answer rejected",
			zap.String("userID", taker.UserID),
			zap.String("slug", middleware.ValidatedSlug(c)),
			zap.Error(err))
		return err
	}
	echoSession(c, resp.SessionID)
	return c.JSON(resp)
}

// FinishSitting godoc
// @Summary Finish a sitting early
// @Description Unanswered questions count as wrong
// @Tags sitting
// @Produce json
// @Param slug path string true "Quiz url"
// @Param X-Anonymous-Session header string false "Anonymous session id"
// @Success 200 {object} dto.SittingResultResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{slug}/finish [post]
func (h *SittingHandler) FinishSitting(c *fiber.Ctx) error {
	result, err := h.service.FinishSitting(c.Context(), h.takerFrom(c), middleware.ValidatedSlug(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}
