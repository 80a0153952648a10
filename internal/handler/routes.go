package handler

import (
	"quiz-sitting/internal/middleware"
	"quiz-sitting/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Routes groups what RegisterRoutes mounts.
type Routes struct {
	Quiz     *QuizHandler
	Sitting  *SittingHandler
	Progress *ProgressHandler
	Marking  *MarkingHandler
	Verifier service.TokenVerifier

	EditorPermission string
	MarkerPermission string
}

// RegisterRoutes mounts the API under router, normally the /api group.
func RegisterRoutes(router fiber.Router, r Routes) {
	vm := middleware.NewValidationMiddleware()
	protected := middleware.Protected(r.Verifier)
	optional := middleware.OptionalAuth(r.Verifier)
	editor := middleware.RequirePermission(r.EditorPermission)

	// Catalogue
	router.Get("/categories", r.Quiz.GetCategories)
	router.Post("/categories", protected, editor, r.Quiz.CreateCategory)
	router.Post("/subcategories", protected, editor, r.Quiz.CreateSubCategory)
	router.Get("/quizzes", r.Quiz.ListQuizzes)
	router.Post("/quizzes", protected, editor, r.Quiz.CreateQuiz)

	slug := vm.ValidateSlug()
	router.Get("/quizzes/:slug", slug, r.Quiz.GetQuiz)
	router.Put("/quizzes/:slug", protected, editor, slug, r.Quiz.UpdateQuiz)
	router.Delete("/quizzes/:slug", protected, editor, slug, r.Quiz.DeleteQuiz)
	router.Post("/quizzes/:slug/questions", protected, editor, slug, r.Quiz.AddQuestion)

	// Taking a quiz works signed in or anonymously
	router.Get("/quizzes/:slug/take", optional, slug, r.Sitting.TakeQuiz)
	router.Post("/quizzes/:slug/take", optional, slug, r.Sitting.SubmitAnswer)
	router.Post("/quizzes/:slug/finish", optional, slug, r.Sitting.FinishSitting)

	router.Get("/progress", protected, r.Progress.GetMyProgress)

	marking := router.Group("/marking", protected, middleware.RequirePermission(r.MarkerPermission))
	marking.Get("/sittings", r.Marking.ListSittings)
	marking.Get("/sittings/:id", vm.ValidateIDParams("id"), r.Marking.GetSitting)
	marking.Post("/sittings/:id/toggle", vm.ValidateIDParams("id"), r.Marking.ToggleQuestion)
	marking.Post("/sittings/:id/suggest", vm.ValidateIDParams("id"), r.Marking.SuggestMark)
}
