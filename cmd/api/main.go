package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidquiz/internal/adapter"
	"vidquiz/internal/adapter/downloader"
	"vidquiz/internal/adapter/stt"
	"vidquiz/internal/adapter/textgen"
	"vidquiz/internal/cache"
	"vidquiz/internal/config"
	"vidquiz/internal/database"
	"vidquiz/internal/domain"
	"vidquiz/internal/handler"
	"vidquiz/internal/logger"
	"vidquiz/internal/middleware"
	"vidquiz/internal/queue"
	"vidquiz/internal/repository"
	"vidquiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	userRepo := repository.NewSQLXUserRepository(db)
	quizRepo := repository.NewSQLXQuizRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	authService := service.NewAuthService(userRepo, cfg.JWT, cfg.GoogleOAuth)

	runner, cleanup, err := buildRunner(ctx, cfg, quizRepo, cacheAdapter, txManager)
	if err != nil {
		appLogger.Fatal("Failed to build pipeline runner", zap.Error(err))
	}
	defer cleanup()

	quizService := service.NewQuizService(quizRepo, runner)

	authHandler := handler.NewAuthHandler(authService)
	quizHandler := handler.NewQuizHandler(quizService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowCredentials: true}))
	app.Use(requestLogger())

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/google/login", authHandler.GoogleLogin)
	auth.Get("/google/callback", authHandler.GoogleCallback)

	quiz := api.Group("/quiz", middleware.Protected(authService))
	quiz.Post("/", quizHandler.Create)
	quiz.Get("/", quizHandler.List)
	quiz.Get("/:id", quizHandler.Get)
	quiz.Put("/:id", quizHandler.Update)
	quiz.Patch("/:id", quizHandler.Patch)
	quiz.Delete("/:id", quizHandler.Delete)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		appLogger.Info("API server listening", zap.String("addr", addr), zap.String("pipelineMode", cfg.Pipeline.Mode))
		if err := app.Listen(addr); err != nil {
			appLogger.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")
	if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
		appLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// buildRunner wires the pipeline execution strategy. In sync mode the full
// pipeline lives in this process; in queue mode only a publisher does and
// workers run the stages.
func buildRunner(
	ctx context.Context,
	cfg *config.Config,
	quizRepo repository.QuizRepository,
	cacheAdapter domain.Cache,
	txManager domain.TransactionManager,
) (domain.PipelineRunner, func(), error) {
	switch cfg.Pipeline.Mode {
	case "queue":
		conn, err := queue.NewRabbitMQConn(ctx, cfg.AMQPURL())
		if err != nil {
			return nil, nil, err
		}
		publisher, err := queue.NewPublisher(conn)
		if err != nil {
			return nil, nil, err
		}
		return service.NewQueueRunner(publisher), func() { publisher.Close() }, nil
	case "sync", "":
		pipeline, err := buildPipeline(ctx, cfg, quizRepo, cacheAdapter, txManager)
		if err != nil {
			return nil, nil, err
		}
		return service.NewSyncRunner(pipeline), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown pipeline mode %q", cfg.Pipeline.Mode)
	}
}

func buildPipeline(
	ctx context.Context,
	cfg *config.Config,
	quizRepo repository.QuizRepository,
	cacheAdapter domain.Cache,
	txManager domain.TransactionManager,
) (domain.PipelineService, error) {
	textGenerator, err := textgen.NewTextGenerator(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	transcriber := service.NewTranscriptionService(
		cacheAdapter,
		downloader.NewYTDLPDownloader(cfg.Downloader.Command, cfg.Downloader.Timeout),
		stt.NewWhisperTranscriber(cfg.STT.Command, cfg.STT.Model, cfg.STT.Timeout),
		cfg.Media.AudioDir,
		cfg.Media.TranscriptDir,
		cfg.Redis.TranscriptTTL,
	)
	generator := service.NewQuestionGenerator(textGenerator, cfg.Media.PromptDir)

	return service.NewPipelineService(quizRepo, transcriber, generator, txManager), nil
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Get().Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}
