package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/exam-pulse/study-service/internal/cache"
	"github.com/exam-pulse/study-service/internal/events"
	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories"
	"github.com/exam-pulse/study-service/internal/scheduler"
)

// ReviewService applies spaced-repetition reviews to flashcards and selects
// study sessions. The schedule math itself lives in the scheduler package;
// this service owns validation, persistence and event publishing around it.
type ReviewService interface {
	Review(ctx context.Context, cardID uint, response models.ReviewResponse) (*ReviewResult, error)
	StudySession(ctx context.Context, subject *string, limit int) ([]*models.Flashcard, error)
	IsDue(ctx context.Context, cardID uint) (bool, error)
}

// ReviewResult is what a study UI needs after grading one card.
type ReviewResult struct {
	Flashcard   *models.Flashcard        `json:"flashcard"`
	Interval    int                      `json:"interval"`
	NextReview  time.Time                `json:"next_review"`
	Performance models.ReviewPerformance `json:"performance"`
}

const defaultStudySessionSize = 20

type reviewService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	cache     cache.CacheService
	publisher events.EventPublisher
	clock     Clock
}

func NewReviewService(repo repositories.Repository, logger *slog.Logger, cacheService cache.CacheService, publisher events.EventPublisher, clock Clock) ReviewService {
	return &reviewService{
		repo:      repo,
		logger:    logger,
		cache:     cacheService,
		publisher: publisher,
		clock:     clock,
	}
}

func (s *reviewService) Review(ctx context.Context, cardID uint, response models.ReviewResponse) (*ReviewResult, error) {
	if !response.Valid() {
		return nil, ErrInvalidResponse
	}

	card, err := s.repo.Flashcard().GetByID(ctx, cardID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFlashcardNotFound
		}
		return nil, fmt.Errorf("failed to get flashcard: %w", err)
	}

	now := s.clock.Now()
	sr, perf, err := scheduler.Review(card.SpacedRepetition, card.Performance, response, now)
	if err != nil {
		return nil, err
	}
	card.SpacedRepetition = sr
	card.Performance = perf

	if err := s.repo.Flashcard().Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to save flashcard: %w", err)
	}

	s.logger.Info("Flashcard reviewed",
		"card_id", card.ID,
		"response", response,
		"interval", sr.Interval,
		"repetition", sr.Repetition,
		"next_review", sr.NextReview)

	// Cached statistics are stale after any review.
	if err := s.cache.DeletePattern(ctx, flashcardStatsKeyPattern); err != nil {
		s.logger.Warn("Failed to invalidate flashcard stats cache", "error", err)
	}

	event := events.NewStudyEvent(events.EventCardReviewed, now, events.CardReviewedPayload{
		CardID:     card.ID,
		Subject:    card.Subject,
		Response:   string(response),
		Interval:   sr.Interval,
		EaseFactor: sr.EaseFactor,
		NextReview: sr.NextReview,
	})
	if err := s.publisher.PublishStudyEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish card reviewed event", "card_id", card.ID, "error", err)
	}

	return &ReviewResult{
		Flashcard:   card,
		Interval:    sr.Interval,
		NextReview:  sr.NextReview,
		Performance: perf,
	}, nil
}

// StudySession returns the cards due as of now, most overdue first.
func (s *reviewService) StudySession(ctx context.Context, subject *string, limit int) ([]*models.Flashcard, error) {
	if limit <= 0 {
		limit = defaultStudySessionSize
	}

	cards, err := s.repo.Flashcard().GetDueForReview(ctx, subject, s.clock.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due flashcards: %w", err)
	}

	return cards, nil
}

func (s *reviewService) IsDue(ctx context.Context, cardID uint) (bool, error) {
	card, err := s.repo.Flashcard().GetByID(ctx, cardID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrFlashcardNotFound
		}
		return false, fmt.Errorf("failed to get flashcard: %w", err)
	}
	return scheduler.DueForReview(card, s.clock.Now()), nil
}
