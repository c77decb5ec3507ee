package postgres

import (
	"context"
	"time"

	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByIDWithQuiz(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Preload("Quiz").
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) Update(ctx context.Context, attempt *models.QuizAttempt) error {
	return a.db.WithContext(ctx).Save(attempt).Error
}

func (a AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	var attempts []*models.QuizAttempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.QuizAttempt{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.applySort(query, filters)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a AttemptPostgreSQL) HasCompletedAttempt(ctx context.Context, quizID uint, userID string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND user_id = ? AND status = ?", quizID, userID, models.AttemptCompleted).
		Count(&count).Error
	return count > 0, err
}

func (a AttemptPostgreSQL) GetStaleInProgress(ctx context.Context, cutoff time.Time) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.AttemptInProgress, cutoff).
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a AttemptPostgreSQL) GetStats(ctx context.Context, quizID uint, passingScore int) (*repositories.QuizAttemptStats, error) {
	var row struct {
		TotalAttempts     int
		CompletedAttempts int
		AverageScore      float64
		PassedAttempts    int
		AverageTimeSpent  float64
	}

	err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select(`COUNT(*) AS total_attempts,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_attempts,
			COALESCE(AVG(score_percentage) FILTER (WHERE status = 'completed'), 0) AS average_score,
			COUNT(*) FILTER (WHERE status = 'completed' AND score_percentage >= ?) AS passed_attempts,
			COALESCE(AVG(time_spent) FILTER (WHERE status = 'completed'), 0) AS average_time_spent`, passingScore).
		Where("quiz_id = ?", quizID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &repositories.QuizAttemptStats{
		TotalAttempts:     row.TotalAttempts,
		CompletedAttempts: row.CompletedAttempts,
		AverageScore:      row.AverageScore,
		AverageTimeSpent:  int(row.AverageTimeSpent),
	}
	if row.CompletedAttempts > 0 {
		stats.PassRate = float64(row.PassedAttempts) / float64(row.CompletedAttempts) * 100
	}

	return stats, nil
}

func (a AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}
	return query
}

func (a AttemptPostgreSQL) applySort(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "started_at", "completed_at":
	default:
		sortBy = "started_at"
	}
	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}
	return query.Order(sortBy + " " + order)
}
