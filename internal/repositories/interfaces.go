package repositories

import (
	"time"

	"github.com/exam-pulse/study-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type FlashcardFilters struct {
	Subject      *string                 `json:"subject"`
	Difficulty   *models.DifficultyLevel `json:"difficulty"`
	Topic        *string                 `json:"topic"`
	DueForReview bool                    `json:"due_for_review"`
	AsOf         time.Time               `json:"as_of"` // reference time for DueForReview
	Limit        int                     `json:"limit"`
	Offset       int                     `json:"offset"`
}

type QuestionFilters struct {
	Type       *models.QuestionType    `json:"type"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Subject    *string                 `json:"subject"`
	Topic      *string                 `json:"topic"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
}

type QuizFilters struct {
	Subject    *string                 `json:"subject"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
}

type AttemptFilters struct {
	QuizID    *uint                `json:"quiz_id"`
	UserID    *string              `json:"user_id"`
	Status    models.AttemptStatus `json:"status"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "started_at", "completed_at"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED STATISTICS STRUCTS =====

type FlashcardStats struct {
	Total          int     `json:"total"`
	DueForReview   int     `json:"due_for_review"`
	TotalReviews   int     `json:"total_reviews"`
	CorrectReviews int     `json:"correct_reviews"`
	Accuracy       int     `json:"accuracy"` // percent, 0 when no reviews
	AverageStreak  float64 `json:"average_streak"`
}

type QuizAttemptStats struct {
	TotalAttempts     int     `json:"total_attempts"`
	CompletedAttempts int     `json:"completed_attempts"`
	AverageScore      float64 `json:"average_score"`
	PassRate          float64 `json:"pass_rate"`
	AverageTimeSpent  int     `json:"average_time_spent"`
}
