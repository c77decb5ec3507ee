package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exam-pulse/study-service/internal/cache"
	"github.com/exam-pulse/study-service/internal/config"
	"github.com/exam-pulse/study-service/internal/handlers"
	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories/postgres"
	"github.com/exam-pulse/study-service/internal/services"
	"github.com/exam-pulse/study-service/internal/utils"
	"github.com/exam-pulse/study-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Flashcard{},
		&models.Question{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	cacheService := cache.CacheService(cache.NewNopCache())
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, statistics caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogger)
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	validator := utils.NewValidator()
	clock := services.SystemClock()

	flashcardService := services.NewFlashcardService(repo, slogger, validator, cacheService, clock)
	reviewService := services.NewReviewService(repo, slogger, cacheService, publisher, clock)
	quizService := services.NewQuizService(repo, slogger, validator)
	attemptService := services.NewAttemptService(repo, slogger, validator, publisher, clock)
	exportService := services.NewExportService(repo, slogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		flashcardService,
		reviewService,
		quizService,
		attemptService,
		exportService,
		logger,
	)
	handlerManager.SetupRoutes(router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runExpirySweep(ctx, attemptService, cfg, slogger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting study service", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

// runExpirySweep periodically abandons in-progress attempts that have been
// idle longer than the configured timeout.
func runExpirySweep(ctx context.Context, attempts services.AttemptService, cfg *config.Config, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.ExpirySweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := attempts.ExpireStale(ctx, cfg.AttemptIdleTimeout); err != nil {
				logger.Error("Attempt expiry sweep failed", "error", err)
			}
		}
	}
}
