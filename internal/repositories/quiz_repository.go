package repositories

import (
	"context"

	"github.com/exam-pulse/study-service/internal/models"
)

// QuizRepository persists quizzes and their aggregate attempt statistics.
type QuizRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Deactivate(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)

	// RecordAttemptScore folds one completed attempt's percentage into the
	// quiz's running mean and attempt counter. The update is a single atomic
	// arithmetic statement; concurrent completions of the same quiz must not
	// lose updates.
	RecordAttemptScore(ctx context.Context, id uint, percentage int) error
}
