package repositories

import (
	"context"

	"github.com/exam-pulse/study-service/internal/models"
)

// QuestionRepository persists questions and their usage statistics.
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)

	// RecordAnswerStat applies one graded answer to the question's aggregate
	// counters (total attempts, correct answers, incremental-mean average
	// time, usage count) as a single atomic arithmetic update.
	RecordAnswerStat(ctx context.Context, id uint, correct bool, timeSpent int) error
}
