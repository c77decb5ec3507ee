package handlers

import (
	"github.com/exam-pulse/study-service/internal/services"
	"github.com/exam-pulse/study-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	flashcardHandler *FlashcardHandler
	quizHandler      *QuizHandler
	attemptHandler   *AttemptHandler
}

func NewHandlerManager(
	flashcardService services.FlashcardService,
	reviewService services.ReviewService,
	quizService services.QuizService,
	attemptService services.AttemptService,
	exportService services.ExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		flashcardHandler: NewFlashcardHandler(flashcardService, reviewService, exportService, logger),
		quizHandler:      NewQuizHandler(quizService, exportService, logger),
		attemptHandler:   NewAttemptHandler(attemptService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Flashcard and review routes
		flashcards := v1.Group("/flashcards")
		{
			flashcards.POST("", hm.flashcardHandler.CreateFlashcard)
			flashcards.POST("/from-questions", hm.flashcardHandler.CreateFromQuestions)
			flashcards.GET("", hm.flashcardHandler.ListFlashcards)
			flashcards.GET("/study-session", hm.flashcardHandler.GetStudySession)
			flashcards.GET("/stats", hm.flashcardHandler.GetFlashcardStats)
			flashcards.GET("/export", hm.flashcardHandler.ExportFlashcards)
			flashcards.GET("/:id", hm.flashcardHandler.GetFlashcard)
			flashcards.PUT("/:id", hm.flashcardHandler.UpdateFlashcard)
			flashcards.DELETE("/:id", hm.flashcardHandler.DeleteFlashcard)
			flashcards.POST("/:id/review", hm.flashcardHandler.ReviewFlashcard)
		}

		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.GET("/:id/stats", hm.quizHandler.GetQuizStats)
			quizzes.GET("/:id/results/export", hm.quizHandler.ExportQuizResults)
		}

		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.POST("/:id/answer", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/complete", hm.attemptHandler.CompleteAttempt)
			attempts.POST("/:id/abandon", hm.attemptHandler.AbandonAttempt)
			attempts.GET("/:id/results", hm.attemptHandler.GetAttemptResults)
		}
	}
}
