package repositories

import (
	"context"
	"time"

	"github.com/exam-pulse/study-service/internal/models"
)

// FlashcardRepository persists flashcards and their spaced-repetition state.
type FlashcardRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, card *models.Flashcard) error
	CreateBatch(ctx context.Context, cards []*models.Flashcard) error
	GetByID(ctx context.Context, id uint) (*models.Flashcard, error)
	Update(ctx context.Context, card *models.Flashcard) error
	Deactivate(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context, filters FlashcardFilters) ([]*models.Flashcard, int64, error)

	// GetDueForReview returns active cards with next_review <= asOf, ordered
	// by next_review ascending, limited to limit.
	GetDueForReview(ctx context.Context, subject *string, asOf time.Time, limit int) ([]*models.Flashcard, error)

	// Statistics
	GetStats(ctx context.Context, subject *string, asOf time.Time) (*FlashcardStats, error)
}
