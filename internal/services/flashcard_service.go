package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/exam-pulse/study-service/internal/cache"
	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories"
	"github.com/exam-pulse/study-service/internal/scheduler"
	"github.com/exam-pulse/study-service/internal/utils"
)

// FlashcardService owns flashcard content: creation (manual or from existing
// questions), edits, soft deletion, listing and statistics. Review-time
// mutation of the schedule state belongs to ReviewService only.
type FlashcardService interface {
	Create(ctx context.Context, req *CreateFlashcardRequest) (*models.Flashcard, error)
	CreateFromQuestions(ctx context.Context, questionIDs []uint) ([]*models.Flashcard, error)
	GetByID(ctx context.Context, id uint) (*models.Flashcard, error)
	Update(ctx context.Context, id uint, req *UpdateFlashcardRequest) (*models.Flashcard, error)
	Deactivate(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.FlashcardFilters) ([]*models.Flashcard, int64, error)
	GetStats(ctx context.Context, subject *string) (*repositories.FlashcardStats, error)
}

type CreateFlashcardRequest struct {
	Front      string                 `json:"front" validate:"required"`
	Back       string                 `json:"back" validate:"required"`
	Subject    string                 `json:"subject" validate:"required,max=100"`
	Topics     []string               `json:"topics"`
	Difficulty models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Tags       []string               `json:"tags"`
}

type UpdateFlashcardRequest struct {
	Front      *string                 `json:"front" validate:"omitempty,min=1"`
	Back       *string                 `json:"back" validate:"omitempty,min=1"`
	Difficulty *models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Topics     []string                `json:"topics"`
	Tags       []string                `json:"tags"`
}

const (
	flashcardStatsKeyPrefix  = "flashcards:stats:"
	flashcardStatsKeyPattern = flashcardStatsKeyPrefix + "*"
	flashcardStatsTTL        = 5 * time.Minute
)

type flashcardService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	cache     cache.CacheService
	clock     Clock
}

func NewFlashcardService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, cacheService cache.CacheService, clock Clock) FlashcardService {
	return &flashcardService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cacheService,
		clock:     clock,
	}
}

func (s *flashcardService) Create(ctx context.Context, req *CreateFlashcardRequest) (*models.Flashcard, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	card := &models.Flashcard{
		Front:            req.Front,
		Back:             req.Back,
		Subject:          req.Subject,
		Topics:           req.Topics,
		Difficulty:       difficulty,
		Tags:             req.Tags,
		SpacedRepetition: scheduler.NewState(s.clock.Now()),
		IsActive:         true,
	}

	if err := s.repo.Flashcard().Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create flashcard: %w", err)
	}

	s.logger.Info("Flashcard created", "card_id", card.ID, "subject", card.Subject)
	return card, nil
}

// CreateFromQuestions turns existing questions into flashcards: question text
// on the front, the answer key (or explanation for essay-style questions)
// on the back.
func (s *flashcardService) CreateFromQuestions(ctx context.Context, questionIDs []uint) ([]*models.Flashcard, error) {
	if len(questionIDs) == 0 {
		return nil, NewValidationError("question_ids", "must not be empty", questionIDs)
	}

	questions, err := s.repo.Question().GetByIDs(ctx, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	if len(questions) != len(questionIDs) {
		return nil, ErrQuestionNotFound
	}

	now := s.clock.Now()
	cards := make([]*models.Flashcard, len(questions))
	for i, q := range questions {
		back := q.CorrectAnswer
		if back == "" && q.QuestionType == models.MultipleChoice {
			if opt := q.CorrectOption(); opt != nil {
				back = opt.Text
			}
		}
		if back == "" && q.Explanation != nil {
			back = *q.Explanation
		}

		sourceID := q.ID
		tags := append([]string{"question-based"}, firstN(q.Keywords, 3)...)
		cards[i] = &models.Flashcard{
			Front:            q.QuestionText,
			Back:             back,
			Subject:          q.Subject,
			Topics:           q.Topics,
			Difficulty:       q.Difficulty,
			Tags:             tags,
			SourceQuestionID: &sourceID,
			SpacedRepetition: scheduler.NewState(now),
			IsActive:         true,
		}
	}

	if err := s.repo.Flashcard().CreateBatch(ctx, cards); err != nil {
		return nil, fmt.Errorf("failed to create flashcards: %w", err)
	}

	s.logger.Info("Flashcards created from questions", "count", len(cards))
	return cards, nil
}

func (s *flashcardService) GetByID(ctx context.Context, id uint) (*models.Flashcard, error) {
	card, err := s.repo.Flashcard().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFlashcardNotFound
		}
		return nil, fmt.Errorf("failed to get flashcard: %w", err)
	}
	return card, nil
}

func (s *flashcardService) Update(ctx context.Context, id uint, req *UpdateFlashcardRequest) (*models.Flashcard, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	card, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Front != nil {
		card.Front = *req.Front
	}
	if req.Back != nil {
		card.Back = *req.Back
	}
	if req.Difficulty != nil {
		card.Difficulty = *req.Difficulty
	}
	if req.Topics != nil {
		card.Topics = req.Topics
	}
	if req.Tags != nil {
		card.Tags = req.Tags
	}

	if err := s.repo.Flashcard().Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update flashcard: %w", err)
	}

	return card, nil
}

func (s *flashcardService) Deactivate(ctx context.Context, id uint) error {
	if err := s.repo.Flashcard().Deactivate(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFlashcardNotFound
		}
		return fmt.Errorf("failed to deactivate flashcard: %w", err)
	}

	s.logger.Info("Flashcard deactivated", "card_id", id)
	return nil
}

func (s *flashcardService) List(ctx context.Context, filters repositories.FlashcardFilters) ([]*models.Flashcard, int64, error) {
	if filters.DueForReview && filters.AsOf.IsZero() {
		filters.AsOf = s.clock.Now()
	}

	cards, total, err := s.repo.Flashcard().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list flashcards: %w", err)
	}
	return cards, total, nil
}

func (s *flashcardService) GetStats(ctx context.Context, subject *string) (*repositories.FlashcardStats, error) {
	key := flashcardStatsKeyPrefix + "all"
	if subject != nil {
		key = flashcardStatsKeyPrefix + *subject
	}

	var cached repositories.FlashcardStats
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	stats, err := s.repo.Flashcard().GetStats(ctx, subject, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get flashcard stats: %w", err)
	}

	if err := s.cache.Set(ctx, key, stats, flashcardStatsTTL); err != nil {
		s.logger.Warn("Failed to cache flashcard stats", "error", err)
	}

	return stats, nil
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
