package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"quiz-sitting/cmd/seed/internal/seedmodels"
	"quiz-sitting/internal/config"
	"quiz-sitting/internal/database"
	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/logger"
	"quiz-sitting/internal/repository"
	"quiz-sitting/internal/service"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

const defaultSeedFile = "config/seed_data/sample_quizzes.json"

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

type counts struct {
	created int
	skipped int
	failed  int
}

func (c *counts) record(log *zap.Logger, what, name string, err error) bool {
	switch {
	case err == nil:
		c.created++
		color.Green("  + %s %s", what, name)
		return true
	case domain.HasCode(err, domain.CodeConflict):
		c.skipped++
		color.Yellow("  = %s %s already exists", what, name)
	default:
		c.failed++
		color.Red("  ! %s %s: %v", what, name, err)
		log.Error("Seeding failed", zap.String("kind", what), zap.String("name", name), zap.Error(err))
	}
	return false
}

func main() {
	seedFile := flag.String("file", defaultSeedFile, "path to the JSON seed file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	db, err := database.NewDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	byteValue, err := os.ReadFile(*seedFile)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", *seedFile), zap.Error(err))
	}
	var seed seedmodels.SeedFile
	if err := json.Unmarshal(byteValue, &seed); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	log.Info("Loaded seed data",
		zap.String("path", *seedFile),
		zap.Int("categories", len(seed.Categories)),
		zap.Int("quizzes", len(seed.Quizzes)))

	// Seeding goes through the authoring service so the same normalization
	// and validation apply as for the API. No cache: nothing to invalidate.
	quizService := service.NewQuizService(
		repository.NewCategoryDatabaseAdapter(db),
		repository.NewQuizDatabaseAdapter(db),
		repository.NewQuestionDatabaseAdapter(db),
		repository.NewTransactionManagerAdapter(db),
		nil,
	)

	var c counts
	for _, sc := range seed.Categories {
		_, err := quizService.CreateCategory(ctx, sc.Name)
		c.record(log, "category", sc.Name, err)
		for _, sub := range sc.SubCategories {
			_, err := quizService.CreateSubCategory(ctx, sub, sc.Name)
			c.record(log, "sub-category", sub, err)
		}
	}

	for _, sq := range seed.Quizzes {
		quiz, err := quizService.CreateQuiz(ctx, &sq.QuizRequest)
		// An existing quiz keeps its questions; re-running the seed must not duplicate them.
		if !c.record(log, "quiz", sq.Title, err) {
			continue
		}
		for _, question := range sq.Questions {
			_, err := quizService.AddQuestion(ctx, quiz.URL, question.QuestionRequest())
			c.record(log, "question", firstN(question.Content, 40), err)
		}
	}

	color.Cyan("Seeding finished: %d created, %d skipped, %d failed", c.created, c.skipped, c.failed)
	if c.failed > 0 {
		os.Exit(1)
	}
}
