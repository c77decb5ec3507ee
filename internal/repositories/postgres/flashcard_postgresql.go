package postgres

import (
	"context"
	"math"
	"time"

	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories"
	"gorm.io/gorm"
)

type FlashcardPostgreSQL struct {
	db *gorm.DB
}

func NewFlashcardPostgreSQL(db *gorm.DB) repositories.FlashcardRepository {
	return &FlashcardPostgreSQL{db: db}
}

func (f FlashcardPostgreSQL) Create(ctx context.Context, card *models.Flashcard) error {
	return f.db.WithContext(ctx).Create(card).Error
}

func (f FlashcardPostgreSQL) CreateBatch(ctx context.Context, cards []*models.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	return f.db.WithContext(ctx).Create(cards).Error
}

func (f FlashcardPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Flashcard, error) {
	var card models.Flashcard
	if err := f.db.WithContext(ctx).First(&card, id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (f FlashcardPostgreSQL) Update(ctx context.Context, card *models.Flashcard) error {
	return f.db.WithContext(ctx).Save(card).Error
}

func (f FlashcardPostgreSQL) Deactivate(ctx context.Context, id uint) error {
	result := f.db.WithContext(ctx).
		Model(&models.Flashcard{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (f FlashcardPostgreSQL) List(ctx context.Context, filters repositories.FlashcardFilters) ([]*models.Flashcard, int64, error) {
	var cards []*models.Flashcard
	var total int64

	query := f.db.WithContext(ctx).Model(&models.Flashcard{}).Where("is_active = ?", true)
	query = f.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("sr_next_review ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&cards).Error; err != nil {
		return nil, 0, err
	}

	return cards, total, nil
}

func (f FlashcardPostgreSQL) GetDueForReview(ctx context.Context, subject *string, asOf time.Time, limit int) ([]*models.Flashcard, error) {
	var cards []*models.Flashcard

	query := f.db.WithContext(ctx).
		Where("is_active = ? AND sr_next_review <= ?", true, asOf).
		Order("sr_next_review ASC")
	if subject != nil {
		query = query.Where("subject = ?", *subject)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&cards).Error; err != nil {
		return nil, err
	}

	return cards, nil
}

func (f FlashcardPostgreSQL) GetStats(ctx context.Context, subject *string, asOf time.Time) (*repositories.FlashcardStats, error) {
	var row struct {
		Total          int
		DueForReview   int
		TotalReviews   int
		CorrectReviews int
		AverageStreak  float64
	}

	query := f.db.WithContext(ctx).
		Model(&models.Flashcard{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE sr_next_review <= ?) AS due_for_review,
			COALESCE(SUM(perf_total_reviews), 0) AS total_reviews,
			COALESCE(SUM(perf_correct_reviews), 0) AS correct_reviews,
			COALESCE(AVG(perf_streak_count), 0) AS average_streak`, asOf).
		Where("is_active = ?", true)
	if subject != nil {
		query = query.Where("subject = ?", *subject)
	}

	if err := query.Scan(&row).Error; err != nil {
		return nil, err
	}

	stats := &repositories.FlashcardStats{
		Total:          row.Total,
		DueForReview:   row.DueForReview,
		TotalReviews:   row.TotalReviews,
		CorrectReviews: row.CorrectReviews,
		AverageStreak:  row.AverageStreak,
	}
	if row.TotalReviews > 0 {
		stats.Accuracy = int(math.Round(float64(row.CorrectReviews) / float64(row.TotalReviews) * 100))
	}

	return stats, nil
}

func (f FlashcardPostgreSQL) applyFilters(query *gorm.DB, filters repositories.FlashcardFilters) *gorm.DB {
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Topic != nil {
		query = query.Where("topics @> ?", `["`+*filters.Topic+`"]`)
	}
	if filters.DueForReview {
		asOf := filters.AsOf
		if asOf.IsZero() {
			asOf = time.Now()
		}
		query = query.Where("sr_next_review <= ?", asOf)
	}
	return query
}
