package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hikaru-dev/clipflow/internal/config"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/cache"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/postgres"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/queue"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/storage"
	"github.com/hikaru-dev/clipflow/internal/transcoder"
	"github.com/hikaru-dev/clipflow/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Best effort; absent .env means env vars only.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// ffmpeg scratch space for downloads and encode output.
	if err := os.MkdirAll(cfg.Worker.TempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO")

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	// The worker only touches Redis to evict stale metadata after a
	// status flip; it never reads from the cache.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	transcodeSvc := usecase.NewTranscodeService(
		postgres.NewVideoRepository(pgClient.Pool()),
		storageClient,
		transcoder.NewFFmpegTranscoder(transcoder.DefaultFFmpegConfig()),
		cache.NewRedisVideoCache(redisClient),
		usecase.TranscodeServiceConfig{
			TempDir:    cfg.Worker.TempDir,
			MaxRetries: cfg.Worker.MaxRetries,
		},
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Tracks in-flight transcodes so shutdown can drain them.
	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("worker started, consuming transcode tasks")
		err := queueClient.ConsumeTranscodeTasks(ctx, func(task repository.TranscodeTask) error {
			wg.Add(1)
			defer wg.Done()
			return processTask(ctx, logger, transcodeSvc, task)
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	// Stop taking new deliveries, then give in-flight transcodes a
	// bounded window to finish.
	cancel()
	drain(logger, &wg, cfg.Worker.ShutdownTimeout)

	logger.Info("worker stopped")
	return nil
}

func processTask(ctx context.Context, logger *slog.Logger, svc usecase.TranscodeService, task repository.TranscodeTask) error {
	logger.Info("processing task",
		slog.String("video_id", task.VideoID.String()),
		slog.Int("retry_count", task.RetryCount),
	)

	if err := svc.ProcessTask(ctx, task); err != nil {
		logger.Error("task processing failed",
			slog.String("video_id", task.VideoID.String()),
			slog.Int("retry_count", task.RetryCount),
			slog.String("error", err.Error()),
		)
		return err
	}

	logger.Info("task completed",
		slog.String("video_id", task.VideoID.String()),
	)
	return nil
}

func drain(logger *slog.Logger, wg *sync.WaitGroup, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight tasks completed")
	case <-time.After(timeout):
		logger.Warn("shutdown timeout exceeded, abandoning in-flight tasks")
	}
}
