package handler

import (
	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/dto"
	"quiz-sitting/internal/logger"
	"quiz-sitting/internal/middleware"
	"quiz-sitting/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MarkingHandler serves the marker's review of completed exam sittings.
// Every route sits behind the marker permission.
type MarkingHandler struct {
	service service.MarkingService
}

func NewMarkingHandler(service service.MarkingService) *MarkingHandler {
	return &MarkingHandler{service: service}
}

// ListSittings godoc
// @Summary List completed exam sittings
// @Tags marking
// @Security ApiKeyAuth
// @Produce json
// @Param quiz query string false "Quiz url"
// @Param user_id query string false "User id"
// @Success 200 {array} dto.SittingSummaryResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /marking/sittings [get]
func (h *MarkingHandler) ListSittings(c *fiber.Ctx) error {
	var filter dto.MarkingFilter
	if err := c.QueryParser(&filter); err != nil {
		return domain.NewInvalidInputError("invalid query parameters")
	}

	sittings, err := h.service.ListSittings(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(sittings)
}

// GetSitting godoc
// @Summary Show a completed sitting
// @Description Questions in their original order with the guesses and incorrect flags
// @Tags marking
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Sitting id"
// @Success 200 {object} dto.MarkingDetailResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /marking/sittings/{id} [get]
func (h *MarkingHandler) GetSitting(c *fiber.Ctx) error {
	detail, err := h.service.GetSittingDetail(c.Context(), middleware.ValidatedID(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// ToggleQuestion godoc
// @Summary Toggle a question between correct and incorrect
// @Tags marking
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "Sitting id"
// @Param request body dto.MarkQuestionRequest true "Question"
// @Success 200 {object} dto.MarkingDetailResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /marking/sittings/{id}/toggle [post]
func (h *MarkingHandler) ToggleQuestion(c *fiber.Ctx) error {
	var req dto.MarkQuestionRequest
	if err := c.BodyParser(&req); err != nil || req.QuestionID <= 0 {
		return domain.ValidationErrors{domain.NewMissingFieldError("question_id")}
	}

	sittingID := middleware.ValidatedID(c, "id")
	detail, err := h.service.ToggleQuestionMark(c.Context(), sittingID, req.QuestionID)
	if err != nil {
		return err
	}
	logger.Get().Info("Marker toggled question",
		zap.String("marker", middleware.UserID(c)),
		zap.Int64("sitting_id", sittingID),
		zap.Int64("question_id", req.QuestionID))
	return c.JSON(detail)
}

// SuggestMark godoc
// @Summary Ask the marking assistant about an essay answer
// @Description The suggestion is advisory, the sitting is not changed
// @Tags marking
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "Sitting id"
// @Param request body dto.MarkQuestionRequest true "Question"
// @Success 200 {object} dto.MarkingSuggestionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /marking/sittings/{id}/suggest [post]
func (h *MarkingHandler) SuggestMark(c *fiber.Ctx) error {
	var req dto.MarkQuestionRequest
	if err := c.BodyParser(&req); err != nil || req.QuestionID <= 0 {
		return domain.ValidationErrors{domain.NewMissingFieldError("question_id")}
	}

	suggestion, err := h.service.SuggestMark(c.Context(), middleware.ValidatedID(c, "id"), req.QuestionID)
	if err != nil {
		return err
	}
	return c.JSON(suggestion)
}
