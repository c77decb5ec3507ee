package repositories

import (
	"context"
	"time"

	"github.com/exam-pulse/study-service/internal/models"
)

// AttemptRepository persists quiz attempts. Per-attempt mutations are expected
// to be serialized by the caller; this layer does not lock.
type AttemptRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	GetByIDWithQuiz(ctx context.Context, id uint) (*models.QuizAttempt, error)
	Update(ctx context.Context, attempt *models.QuizAttempt) error

	// Query operations
	List(ctx context.Context, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
	HasCompletedAttempt(ctx context.Context, quizID uint, userID string) (bool, error)

	// GetStaleInProgress returns in-progress attempts untouched since the
	// cutoff, candidates for idle-expiry into abandoned.
	GetStaleInProgress(ctx context.Context, cutoff time.Time) ([]*models.QuizAttempt, error)

	// Statistics
	GetStats(ctx context.Context, quizID uint, passingScore int) (*QuizAttemptStats, error)
}
