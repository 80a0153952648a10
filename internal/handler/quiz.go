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

// QuizHandler handles catalogue and authoring HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GetCategories godoc
// @Summary Get all quiz categories
// @Description Returns all categories, served from the cache when possible
// @Tags categories
// @Produce json
// @Success 200 {array} dto.CategoryResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /categories [get]
func (h *QuizHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

// CreateCategory godoc
// @Summary Create a category
// @Description The name is normalized to a lower-case hyphenated key
// @Tags categories
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /categories [post]
func (h *QuizHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("request body is not valid JSON")
	}

	category, err := h.service.CreateCategory(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// CreateSubCategory godoc
// @Summary Create a subcategory
// @Tags categories
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Subcategory and its owning category"
// @Success 201 {object} dto.SubCategoryResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subcategories [post]
func (h *QuizHandler) CreateSubCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("request body is not valid JSON")
	}

	sub, err := h.service.CreateSubCategory(c.Context(), req.Name, req.Category)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// ListQuizzes godoc
// @Summary List quizzes
// @Description Lists published quizzes, optionally of one category
// @Tags quiz
// @Produce json
// @Param category query string false "Category name"
// @Success 200 {array} dto.QuizSummaryResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	quizzes, err := h.service.ListQuizzes(c.Context(), c.Query("category"))
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}

// GetQuiz godoc
// @Summary Get a quiz
// @Tags quiz
// @Produce json
// @Param slug path string true "Quiz url"
// @Success 200 {object} dto.QuizDetailResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{slug} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	detail, err := h.service.GetQuizDetail(c.Context(), middleware.ValidatedSlug(c))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Description The url is derived from the title when empty
// @Tags quiz
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.QuizRequest true "Quiz"
// @Success 201 {object} dto.QuizDetailResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.QuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("request body is not valid JSON")
	}

	detail, err := h.service.CreateQuiz(c.Context(), &req)
	if err != nil {
		return err
	}
	logger.Get().Info("Quiz created by editor",
		zap.String("userID", middleware.UserID(c)),
		zap.String("url", detail.URL))
	return c.Status(fiber.StatusCreated).JSON(detail)
}

// UpdateQuiz godoc
// @Summary Update a quiz
// @Tags quiz
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param slug path string true "Quiz url"
// @Param request body dto.QuizRequest true "Quiz"
// @Success 200 {object} dto.QuizDetailResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{slug} [put]
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	var req dto.QuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("request body is not valid JSON")
	}

	detail, err := h.service.UpdateQuiz(c.Context(), middleware.ValidatedSlug(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Tags quiz
// @Security ApiKeyAuth
// @Param slug path string true "Quiz url"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{slug} [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.service.DeleteQuiz(c.Context(), middleware.ValidatedSlug(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddQuestion godoc
// @Summary Add a question to a quiz
// @Description kind is multiple_choice, true_false or essay
// @Tags quiz
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param slug path string true "Quiz url"
// @Param request body dto.QuestionRequest true "Question"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{slug}/questions [post]
func (h *QuizHandler) AddQuestion(c *fiber.Ctx) error {
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("request body is not valid JSON")
	}

	question, err := h.service.AddQuestion(c.Context(), middleware.ValidatedSlug(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}
