package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vidquiz/internal/adapter"
	"vidquiz/internal/adapter/downloader"
	"vidquiz/internal/adapter/stt"
	"vidquiz/internal/adapter/textgen"
	"vidquiz/internal/cache"
	"vidquiz/internal/config"
	"vidquiz/internal/database"
	"vidquiz/internal/logger"
	"vidquiz/internal/queue"
	"vidquiz/internal/repository"
	"vidquiz/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// The worker process drains the pipeline queue. Run it alongside the API
// server when pipeline.mode is "queue"; in sync mode it has nothing to do.
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

	textGenerator, err := textgen.NewTextGenerator(ctx, cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to initialize text generator", zap.Error(err))
	}

	quizRepo := repository.NewSQLXQuizRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	transcriber := service.NewTranscriptionService(
		adapter.NewRedisCacheAdapter(redisClient),
		downloader.NewYTDLPDownloader(cfg.Downloader.Command, cfg.Downloader.Timeout),
		stt.NewWhisperTranscriber(cfg.STT.Command, cfg.STT.Model, cfg.STT.Timeout),
		cfg.Media.AudioDir,
		cfg.Media.TranscriptDir,
		cfg.Redis.TranscriptTTL,
	)
	generator := service.NewQuestionGenerator(textGenerator, cfg.Media.PromptDir)
	pipeline := service.NewPipelineService(quizRepo, transcriber, generator, txManager)

	conn, err := queue.NewRabbitMQConn(ctx, cfg.AMQPURL())
	if err != nil {
		appLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}

	consumer, err := queue.NewConsumer(conn, pipeline, cfg.Pipeline.Workers)
	if err != nil {
		appLogger.Fatal("Failed to create consumer", zap.Error(err))
	}
	defer consumer.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Consume(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Fatal("Worker stopped", zap.Error(err))
	}
	appLogger.Info("Worker shut down")
}
