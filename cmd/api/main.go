package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hikaru-dev/clipflow/internal/api/handler"
	"github.com/hikaru-dev/clipflow/internal/api/middleware"
	"github.com/hikaru-dev/clipflow/internal/config"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/cache"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/identity"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/postgres"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/queue"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/storage"
	"github.com/hikaru-dev/clipflow/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

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

	// Infrastructure clients
	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:       cfg.MinIO.Endpoint,
		PublicEndpoint: cfg.MinIO.PublicEndpoint,
		AccessKey:      cfg.MinIO.AccessKey,
		SecretKey:      cfg.MinIO.SecretKey,
		Bucket:         cfg.MinIO.Bucket,
		UseSSL:         cfg.MinIO.UseSSL,
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

	verifier, err := identity.NewFirebaseVerifier(ctx, cfg.Firebase.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	// Repositories
	videoRepo := postgres.NewVideoRepository(pgClient.Pool())
	reactionRepo := postgres.NewReactionRepository(pgClient.Pool())
	commentRepo := postgres.NewCommentRepository(pgClient.Pool())
	videoCache := cache.NewRedisVideoCache(redisClient)

	// Services
	videoSvc := usecase.NewCachedVideoService(
		usecase.NewVideoService(videoRepo, storageClient, queueClient, usecase.DefaultVideoServiceConfig()),
		videoCache,
		usecase.CachedVideoServiceConfig{
			CacheTTL:   cfg.Cache.VideoTTL,
			CDNBaseURL: cfg.CDN.BaseURL,
		},
	)
	feedSvc := usecase.NewFeedService(videoRepo, usecase.FeedServiceConfig{
		CDNBaseURL: cfg.CDN.BaseURL,
	})
	reactionSvc := usecase.NewReactionService(reactionRepo, videoCache)
	commentSvc := usecase.NewCommentService(commentRepo, videoRepo)

	r := setupRouter(logger, routerDeps{
		auth:     middleware.NewAuthenticator(verifier, logger),
		video:    handler.NewVideoHandler(videoSvc),
		feed:     handler.NewFeedHandler(feedSvc),
		reaction: handler.NewReactionHandler(reactionSvc),
		comment:  handler.NewCommentHandler(commentSvc),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

type routerDeps struct {
	auth     *middleware.Authenticator
	video    *handler.VideoHandler
	feed     *handler.FeedHandler
	reaction *handler.ReactionHandler
	comment  *handler.CommentHandler
}

func setupRouter(logger *slog.Logger, deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/feed", deps.feed.Get)

		r.Route("/videos", func(r chi.Router) {
			// Public reads
			r.Get("/{id}", deps.video.Get)
			r.Get("/{id}/watch", deps.video.Watch)
			r.Get("/{id}/comments", deps.comment.List)

			// Authenticated writes and owner-scoped reads
			r.Group(func(r chi.Router) {
				r.Use(deps.auth.RequireAuth)
				r.Get("/", deps.video.ListMine)
				r.Post("/", deps.video.Create)
				r.Post("/{id}/process", deps.video.TriggerProcess)
				r.Get("/{id}/download", deps.video.Download)
				r.Post("/{id}/reactions", deps.reaction.React)
				r.Post("/{id}/comments", deps.comment.Add)
			})
		})
	})

	return r
}
