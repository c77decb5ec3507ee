package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories"
	"github.com/exam-pulse/study-service/internal/utils"
)

// QuizService manages quiz definitions and their question lists. Attempt
// lifecycle and scoring live in AttemptService.
type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest) (*models.Quiz, error)
	Deactivate(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error)
	GetAttemptStats(ctx context.Context, id uint) (*repositories.QuizAttemptStats, error)
}

type QuizQuestionRequest struct {
	QuestionID uint `json:"question_id" validate:"required"`
	Points     int  `json:"points" validate:"omitempty,min=1"`
}

type CreateQuizRequest struct {
	Title       string                 `json:"title" validate:"required,min=1,max=200"`
	Description *string                `json:"description" validate:"omitempty,max=1000"`
	Subject     string                 `json:"subject" validate:"required,max=100"`
	Difficulty  models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard mixed"`
	Topics      []string               `json:"topics"`
	Questions   []QuizQuestionRequest  `json:"questions" validate:"required,min=1,dive"`
	Settings    *models.QuizSettings   `json:"settings"`
	CreatedBy   string                 `json:"created_by" validate:"omitempty,max=100"`
}

type UpdateQuizRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string              `json:"description" validate:"omitempty,max=1000"`
	Topics      []string             `json:"topics"`
	Settings    *models.QuizSettings `json:"settings"`
}

type quizService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewQuizService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) QuizService {
	return &quizService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ids := make([]uint, len(req.Questions))
	seen := make(map[uint]struct{}, len(req.Questions))
	for i, q := range req.Questions {
		if _, dup := seen[q.QuestionID]; dup {
			return nil, NewValidationError("questions", "duplicate question id", q.QuestionID)
		}
		seen[q.QuestionID] = struct{}{}
		ids[i] = q.QuestionID
	}

	// Every referenced question must exist before the quiz is persisted.
	questions, err := s.repo.Question().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to verify questions: %w", err)
	}
	if len(questions) != len(ids) {
		return nil, ErrQuestionNotFound
	}

	settings := models.QuizSettings{
		ShowCorrectAnswers: true,
		AllowRetakes:       true,
		PassingScore:       70,
	}
	if req.Settings != nil {
		settings = *req.Settings
	}
	if err := s.validator.Validate(&settings); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMixed
	}

	quizQuestions := make([]models.QuizQuestion, len(req.Questions))
	for i, q := range req.Questions {
		points := q.Points
		if points == 0 {
			points = 1
		}
		quizQuestions[i] = models.QuizQuestion{
			QuestionID: q.QuestionID,
			Position:   i,
			Points:     points,
		}
	}

	quiz := &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		Difficulty:  difficulty,
		Topics:      req.Topics,
		Questions:   quizQuestions,
		Settings:    settings,
		IsActive:    true,
		CreatedBy:   req.CreatedBy,
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID, "subject", quiz.Subject, "questions", len(quizQuestions))
	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.Topics != nil {
		quiz.Topics = req.Topics
	}
	if req.Settings != nil {
		if err := s.validator.Validate(req.Settings); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		quiz.Settings = *req.Settings
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	return quiz, nil
}

func (s *quizService) Deactivate(ctx context.Context, id uint) error {
	if err := s.repo.Quiz().Deactivate(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to deactivate quiz: %w", err)
	}

	s.logger.Info("Quiz deactivated", "quiz_id", id)
	return nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	quizzes, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, total, nil
}

func (s *quizService) GetAttemptStats(ctx context.Context, id uint) (*repositories.QuizAttemptStats, error) {
	quiz, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Attempt().GetStats(ctx, quiz.ID, quiz.Settings.PassingScore)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt stats: %w", err)
	}
	return stats, nil
}
