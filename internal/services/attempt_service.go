package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/exam-pulse/study-service/internal/events"
	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories"
	"github.com/exam-pulse/study-service/internal/utils"
	"github.com/google/uuid"
)

// AttemptService is the quiz attempt state machine: in-progress attempts are
// created by Start, mutated by Answer, and finalized by Complete or Abandon.
// Completed and abandoned are terminal.
type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest) (*StartAttemptResult, error)
	Answer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest) (*AnswerResult, error)
	Complete(ctx context.Context, attemptID uint) (*CompleteResult, error)
	Abandon(ctx context.Context, attemptID uint) error
	GetResults(ctx context.Context, attemptID uint) (*models.QuizAttempt, error)

	// ExpireStale transitions in-progress attempts idle since before the
	// cutoff into abandoned. Returns the number of attempts expired.
	ExpireStale(ctx context.Context, idleFor time.Duration) (int, error)
}

// ===== REQUEST / RESPONSE STRUCTS =====

type StartAttemptRequest struct {
	QuizID uint   `json:"quiz_id" validate:"required"`
	UserID string `json:"user_id" validate:"omitempty,max=100"`
}

type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	TimeSpent  int    `json:"time_spent" validate:"min=0"`
}

type StartAttemptResult struct {
	AttemptID uint      `json:"attempt_id"`
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
	Quiz      *QuizView `json:"quiz"`
}

type AnswerResult struct {
	IsCorrect    bool `json:"is_correct"`
	PointsEarned int  `json:"points_earned"`
}

type CompleteResult struct {
	Score     models.AttemptScore    `json:"score"`
	TimeSpent int                    `json:"time_spent"`
	Answers   []models.AttemptAnswer `json:"answers"`
	Passed    bool                   `json:"passed"`
}

// QuizView is the consumer-facing rendition of a quiz during an active
// attempt. It never carries the answer key: option correctness flags,
// correct answers and explanations are stripped before it leaves the service.
type QuizView struct {
	ID        uint               `json:"id"`
	Title     string             `json:"title"`
	Subject   string             `json:"subject"`
	TimeLimit *int               `json:"time_limit"`
	Questions []QuizQuestionView `json:"questions"`
}

type QuizQuestionView struct {
	QuestionID   uint                `json:"question_id"`
	QuestionText string              `json:"question_text"`
	QuestionType models.QuestionType `json:"question_type"`
	Options      []string            `json:"options,omitempty"`
	Points       int                 `json:"points"`
}

type attemptService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	clock     Clock
}

func NewAttemptService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, publisher events.EventPublisher, clock Clock) AttemptService {
	return &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		clock:     clock,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest) (*StartAttemptResult, error) {
	s.logger.Info("Starting quiz attempt", "quiz_id", req.QuizID, "user_id", req.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.IsActive {
		return nil, ErrQuizInactive
	}
	if len(quiz.Questions) == 0 {
		return nil, ErrQuizEmpty
	}

	if !quiz.Settings.AllowRetakes && req.UserID != "" {
		completed, err := s.repo.Attempt().HasCompletedAttempt(ctx, quiz.ID, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check prior attempts: %w", err)
		}
		if completed {
			return nil, NewBusinessRuleError("retakes-not-allowed", "quiz does not allow retakes", map[string]interface{}{
				"quiz_id": quiz.ID,
				"user_id": req.UserID,
			})
		}
	}

	now := s.clock.Now()

	// One slot per question in canonical order; slots are never resized.
	answers := make([]models.AttemptAnswer, len(quiz.Questions))
	for i, qq := range quiz.Questions {
		answers[i] = models.AttemptAnswer{
			QuestionID:     qq.QuestionID,
			SelectedAnswer: nil,
			IsCorrect:      false,
			TimeSpent:      0,
			PointsEarned:   0,
		}
	}

	attempt := &models.QuizAttempt{
		QuizID:    quiz.ID,
		UserID:    req.UserID,
		SessionID: uuid.NewString(),
		Answers:   answers,
		Score: models.AttemptScore{
			TotalPoints:  len(quiz.Questions),
			EarnedPoints: 0,
			Percentage:   0,
		},
		Status:    models.AttemptInProgress,
		StartedAt: now,
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Quiz attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", quiz.ID,
		"question_count", len(quiz.Questions))

	return &StartAttemptResult{
		AttemptID: attempt.ID,
		SessionID: attempt.SessionID,
		StartedAt: attempt.StartedAt,
		Quiz:      s.buildQuizView(quiz),
	}, nil
}

func (s *attemptService) Answer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest) (*AnswerResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAttemptNotActive
	}

	slot := attempt.AnswerSlot(req.QuestionID)
	if slot < 0 {
		return nil, ErrQuestionNotInAttempt
	}

	question, err := s.repo.Question().GetByID(ctx, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	isCorrect := gradeAnswer(question, req.Answer)
	points := 0
	if isCorrect {
		points = 1
	}

	// Re-answering replaces the slot wholesale; nothing accumulates.
	submitted := req.Answer
	attempt.Answers[slot] = models.AttemptAnswer{
		QuestionID:     req.QuestionID,
		SelectedAnswer: &submitted,
		IsCorrect:      isCorrect,
		TimeSpent:      req.TimeSpent,
		PointsEarned:   points,
	}

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	s.logger.Debug("Answer submitted",
		"attempt_id", attemptID,
		"question_id", req.QuestionID,
		"is_correct", isCorrect)

	return &AnswerResult{IsCorrect: isCorrect, PointsEarned: points}, nil
}

func (s *attemptService) Complete(ctx context.Context, attemptID uint) (*CompleteResult, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.Status == models.AttemptCompleted {
		return nil, ErrAttemptAlreadyCompleted
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAttemptNotActive
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, attempt.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	earned := 0
	timeSpent := 0
	for _, answer := range attempt.Answers {
		earned += answer.PointsEarned
		timeSpent += answer.TimeSpent
	}
	total := len(attempt.Answers) // never 0: Start rejects empty quizzes
	percentage := int(math.Round(float64(earned) / float64(total) * 100))

	now := s.clock.Now()
	attempt.Score = models.AttemptScore{
		TotalPoints:  total,
		EarnedPoints: earned,
		Percentage:   percentage,
	}
	attempt.TimeSpent = timeSpent
	attempt.Status = models.AttemptCompleted
	attempt.CompletedAt = &now

	// The attempt record is the system of record for the result; it is
	// persisted before any aggregate bookkeeping.
	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to complete attempt: %w", err)
	}

	s.updateAggregates(ctx, attempt, percentage)

	passed := percentage >= quiz.Settings.PassingScore

	s.logger.Info("Quiz attempt completed",
		"attempt_id", attempt.ID,
		"quiz_id", attempt.QuizID,
		"percentage", percentage,
		"passed", passed)

	event := events.NewStudyEvent(events.EventAttemptCompleted, now, events.AttemptCompletedPayload{
		AttemptID:  attempt.ID,
		QuizID:     attempt.QuizID,
		UserID:     attempt.UserID,
		Percentage: percentage,
		Passed:     passed,
		TimeSpent:  timeSpent,
	})
	if err := s.publisher.PublishStudyEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt completed event", "attempt_id", attempt.ID, "error", err)
	}

	return &CompleteResult{
		Score:     attempt.Score,
		TimeSpent: timeSpent,
		Answers:   attempt.Answers,
		Passed:    passed,
	}, nil
}

func (s *attemptService) Abandon(ctx context.Context, attemptID uint) error {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.Status != models.AttemptInProgress {
		return ErrAttemptNotActive
	}

	return s.abandonAttempt(ctx, attempt, "explicit")
}

func (s *attemptService) GetResults(ctx context.Context, attemptID uint) (*models.QuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByIDWithQuiz(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

func (s *attemptService) ExpireStale(ctx context.Context, idleFor time.Duration) (int, error) {
	cutoff := s.clock.Now().Add(-idleFor)

	stale, err := s.repo.Attempt().GetStaleInProgress(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to get stale attempts: %w", err)
	}

	expired := 0
	for _, attempt := range stale {
		if err := s.abandonAttempt(ctx, attempt, "idle-expiry"); err != nil {
			s.logger.Error("Failed to expire stale attempt", "attempt_id", attempt.ID, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("Expired stale quiz attempts", "count", expired)
	}

	return expired, nil
}
