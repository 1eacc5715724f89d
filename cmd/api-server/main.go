package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/http-api/handler"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
	"reviewhub/internal/mailer"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	mail, err := mailer.New(cfg, logger)
	if err != nil {
		log.Fatalf("could not set up mailer: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, mail, cfg)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, reviewRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, cfg.PageSize)
	categoryHandler := handler.NewCategoryHandler(categoryService, cfg.PageSize)
	genreHandler := handler.NewGenreHandler(genreService, cfg.PageSize)
	titleHandler := handler.NewTitleHandler(titleService, cfg.PageSize)
	reviewHandler := handler.NewReviewHandler(reviewService, cfg.PageSize)
	commentHandler := handler.NewCommentHandler(commentService, cfg.PageSize)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMW := middleware.AuthMiddleware(authService)
	rateLimitMW := middleware.RateLimit(newRateLimiter(cfg, logger))

	api := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(api.Group("/auth", rateLimitMW))
		userHandler.RegisterRoutes(api, authMW)
		categoryHandler.RegisterRoutes(api, authMW)
		genreHandler.RegisterRoutes(api, authMW)

		titles := api.Group("/titles")
		titleHandler.RegisterRoutes(titles, authMW)
		reviewHandler.RegisterRoutes(titles, authMW)
		commentHandler.RegisterRoutes(titles, authMW)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("starting api server", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelDebug
	switch cfg.LogLevel {
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// newRateLimiter prefers the Redis-backed limiter so the auth endpoints
// share one budget across instances, falling back to a per-process limiter.
func newRateLimiter(cfg *config.Config, logger *slog.Logger) middleware.RateLimiter {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		logger.Info("using redis rate limiter", "addr", opts.Addr)
		return middleware.NewRedisRateLimiter(redis.NewClient(opts), cfg.AuthRateLimit, cfg.AuthRateWindow)
	}
	logger.Info("using in-process rate limiter")
	return middleware.NewLocalRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
}
