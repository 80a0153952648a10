// @title Quiz Sitting API
// @version 1.0
// @description Quizzes taken one question at a time, with progress tracking and exam marking.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quiz-sitting/internal/adapter"
	"quiz-sitting/internal/adapter/marking"
	"quiz-sitting/internal/cache"
	"quiz-sitting/internal/config"
	"quiz-sitting/internal/database"
	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/handler"
	"quiz-sitting/internal/logger"
	"quiz-sitting/internal/middleware"
	"quiz-sitting/internal/repository"
	"quiz-sitting/internal/service"

	_ "quiz-sitting/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewDB(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err), zap.String("driver", cfg.DB.Driver))
	}
	defer db.Close()

	// Repositories
	categoryRepo := repository.NewCategoryDatabaseAdapter(db)
	quizRepo := repository.NewQuizDatabaseAdapter(db)
	questionRepo := repository.NewQuestionDatabaseAdapter(db)
	sittingRepo := repository.NewSittingDatabaseAdapter(db)
	progressRepo := repository.NewProgressDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Redis is optional: without it categories are not cached and anonymous
	// taking is refused.
	var cacheAdapter domain.Cache
	var anonymousStore service.AnonymousSessionStore
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		anonymousStore = service.NewAnonymousSessionStore(cacheAdapter, cfg.Anonymous.SessionTTL)
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	} else {
		appLogger.Warn("No Redis address configured, anonymous sittings are disabled")
	}

	var assistant domain.EssayMarkingAssistant
	if cfg.Marking.LLMServer != "" {
		assistant, err = marking.NewOllamaMarker(cfg.Marking.LLMServer, cfg.Marking.Model, cfg.Marking.Timeout)
		if err != nil {
			appLogger.Fatal("Failed to create marking assistant", zap.Error(err))
		}
		appLogger.Info("Essay marking assistant initialized", zap.String("model", cfg.Marking.Model))
	}

	verifier, err := service.NewTokenVerifier(cfg.JWT.Secret)
	if err != nil {
		appLogger.Fatal("Failed to create token verifier", zap.Error(err))
	}

	// Services
	quizService := service.NewQuizService(categoryRepo, quizRepo, questionRepo, txManager, cacheAdapter)
	progressService := service.NewProgressService(progressRepo, categoryRepo, sittingRepo, quizRepo)
	sittingService := service.NewSittingService(quizRepo, questionRepo, sittingRepo, txManager, progressService, anonymousStore)
	markingService := service.NewMarkingService(sittingRepo, quizRepo, sittingService, txManager, assistant)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization," + handler.AnonymousSessionHeader,
		ExposeHeaders: handler.AnonymousSessionHeader,
		MaxAge:        300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app.Group("/api"), handler.Routes{
		Quiz:             handler.NewQuizHandler(quizService),
		Sitting:          handler.NewSittingHandler(sittingService, cfg.JWT.EditorPermission),
		Progress:         handler.NewProgressHandler(progressService),
		Marking:          handler.NewMarkingHandler(markingService),
		Verifier:         verifier,
		EditorPermission: cfg.JWT.EditorPermission,
		MarkerPermission: cfg.JWT.MarkerPermission,
	})

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
