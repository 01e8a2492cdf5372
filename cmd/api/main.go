package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkwell/blogapi/internal/auth"
	"github.com/inkwell/blogapi/internal/comment"
	"github.com/inkwell/blogapi/internal/config"
	"github.com/inkwell/blogapi/internal/logger"
	"github.com/inkwell/blogapi/internal/post"
	"github.com/inkwell/blogapi/internal/ratelimit"
	"github.com/inkwell/blogapi/internal/server"
	"github.com/inkwell/blogapi/internal/storage"
	"github.com/inkwell/blogapi/internal/user"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	log, err := logger.Init()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := storage.Migrate(ctx, cfg.Postgres); err != nil {
		log.Fatal("migrate database", zap.Error(err))
	}

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	signer, err := auth.NewTokenSigner(cfg.Auth.TokenSecret)
	if err != nil {
		log.Fatal("token signer", zap.Error(err))
	}

	var (
		redisClient *redis.Client
		authOpts    []auth.Option
	)
	if cfg.Redis.Enabled() {
		redisClient, err = storage.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("connect redis", zap.Error(err))
		}
		defer redisClient.Close()

		limiter := ratelimit.NewLoginLimiter(redisClient, cfg.Auth.MaxLoginAttempts, cfg.Auth.LoginCooldown)
		authOpts = append(authOpts, auth.WithLoginLimiter(limiter))
	} else {
		log.Info("REDIS_ADDR not set, login throttling disabled")
	}

	authService := auth.NewService(auth.NewRepository(dbPool), signer, cfg.Auth, authOpts...)
	userService := user.NewService(user.NewRepository(dbPool))
	postService := post.NewService(post.NewRepository(dbPool))
	commentService := comment.NewService(comment.NewRepository(dbPool))

	go auth.RunRefreshTokenJanitor(ctx, authService, cfg.Auth.JanitorInterval)

	router := server.NewRouter(server.Dependencies{
		Config:         cfg,
		DB:             dbPool,
		Redis:          redisClient,
		AuthService:    authService,
		UserService:    userService,
		PostService:    postService,
		CommentService: commentService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("blog API listening", zap.String("addr", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
