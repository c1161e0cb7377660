package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/http-api/handler"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/permission"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
	"reviewhub/internal/mailer"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("could not connect to database", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Outbound mail; development falls back to logging codes instead of
	// delivering them
	var mail mailer.Mailer
	if cfg.IsDevelopment() && cfg.SMTPUser == "" {
		mail = mailer.NewLogMailer(logger)
	} else {
		mail = mailer.NewSMTPMailer(cfg)
	}

	// Services
	authService := service.NewAuthService(userRepo, mail, cfg)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, reviewRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	// Middleware
	requireAuth := middleware.AuthMiddleware(authService, userRepo)
	optionalAuth := middleware.OptionalAuth(authService, userRepo)
	requireAdmin := middleware.RequireAdmin()
	ipLimiter := middleware.NewKeyedRateLimiter(10, 20)

	authLimiter := middleware.RateLimit(middleware.NewKeyedRateLimiter(1, 5), logger)
	if cfg.RedisURL != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
		})
		authLimiter = middleware.AuthRateLimit(rdb, 20, time.Minute, logger)
	}

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(ipLimiter, logger))

	r.GET("/check-conn", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
	})

	v1 := r.Group("/api/v1")

	handler.NewAuthHandler(authService).
		RegisterRoutes(v1.Group("/auth"), authLimiter)
	handler.NewUserHandler(userService).
		RegisterRoutes(v1.Group("/users"), requireAuth, requireAdmin)
	handler.NewCategoryHandler(categoryService).
		RegisterRoutes(v1.Group("/categories"), optionalAuth, requireAuth, middleware.RequireCatalogWrite(permission.CollectionCategories))
	handler.NewGenreHandler(genreService).
		RegisterRoutes(v1.Group("/genres"), optionalAuth, requireAuth, middleware.RequireCatalogWrite(permission.CollectionGenres))

	titles := v1.Group("/titles")
	handler.NewTitleHandler(titleService).
		RegisterRoutes(titles, optionalAuth, requireAuth, middleware.RequireCatalogWrite(permission.CollectionTitles))
	handler.NewReviewHandler(reviewService).
		RegisterRoutes(titles.Group("/:title_id/reviews"), optionalAuth, requireAuth)
	handler.NewCommentHandler(commentService).
		RegisterRoutes(titles.Group("/:title_id/reviews/:review_id/comments"), optionalAuth, requireAuth)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("server starting", "addr", addr, "env", cfg.GoEnv)
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
