package handler

import (
	"quiz-sitting/internal/logger"
	"quiz-sitting/internal/middleware"
	"quiz-sitting/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ProgressHandler struct {
	progressService service.ProgressService
}

func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetMyProgress retrieves the category scores and exam history of the current user.
// @Summary Get My Progress
// @Description Per-category score, possible and percent, plus completed exam sittings.
// @Tags progress
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.ProgressResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /progress [get]
func (h *ProgressHandler) GetMyProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		logger.Get().Warn("User ID not found in context for GetMyProgress", zap.String("path", c.Path()))
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}

	progress, err := h.progressService.GetProgress(c.Context(), userID)
	if err != nil {
		return err
	}
	logger.Get().Debug("Progress retrieved",
		zap.String("userID", userID),
		zap.Int("categories", len(progress.Categories)),
		zap.Int("exams", len(progress.Exams)))
	return c.JSON(progress)
}
