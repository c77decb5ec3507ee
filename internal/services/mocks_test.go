package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/exam-pulse/study-service/internal/events"
	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// ===== REPOSITORY MOCKS =====

type MockFlashcardRepository struct {
	mock.Mock
}

func (m *MockFlashcardRepository) Create(ctx context.Context, card *models.Flashcard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockFlashcardRepository) CreateBatch(ctx context.Context, cards []*models.Flashcard) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

func (m *MockFlashcardRepository) GetByID(ctx context.Context, id uint) (*models.Flashcard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) Update(ctx context.Context, card *models.Flashcard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockFlashcardRepository) Deactivate(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlashcardRepository) List(ctx context.Context, filters repositories.FlashcardFilters) ([]*models.Flashcard, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Flashcard), args.Get(1).(int64), args.Error(2)
}

func (m *MockFlashcardRepository) GetDueForReview(ctx context.Context, subject *string, asOf time.Time, limit int) ([]*models.Flashcard, error) {
	args := m.Called(ctx, subject, asOf, limit)
	return args.Get(0).([]*models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) GetStats(ctx context.Context, subject *string, asOf time.Time) (*repositories.FlashcardStats, error) {
	args := m.Called(ctx, subject, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.FlashcardStats), args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) RecordAnswerStat(ctx context.Context, id uint, correct bool, timeSpent int) error {
	args := m.Called(ctx, id, correct, timeSpent)
	return args.Error(0)
}

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) Deactivate(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuizRepository) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) RecordAttemptScore(ctx context.Context, id uint, percentage int) error {
	args := m.Called(ctx, id, percentage)
	return args.Error(0)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByIDWithQuiz(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) Update(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.QuizAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) HasCompletedAttempt(ctx context.Context, quizID uint, userID string) (bool, error) {
	args := m.Called(ctx, quizID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) GetStaleInProgress(ctx context.Context, cutoff time.Time) ([]*models.QuizAttempt, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetStats(ctx context.Context, quizID uint, passingScore int) (*repositories.QuizAttemptStats, error) {
	args := m.Called(ctx, quizID, passingScore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.QuizAttemptStats), args.Error(1)
}

// MockRepository aggregates the entity mocks behind the Repository interface.
type MockRepository struct {
	flashcards *MockFlashcardRepository
	questions  *MockQuestionRepository
	quizzes    *MockQuizRepository
	attempts   *MockAttemptRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		flashcards: &MockFlashcardRepository{},
		questions:  &MockQuestionRepository{},
		quizzes:    &MockQuizRepository{},
		attempts:   &MockAttemptRepository{},
	}
}

func (m *MockRepository) Flashcard() repositories.FlashcardRepository { return m.flashcards }
func (m *MockRepository) Question() repositories.QuestionRepository   { return m.questions }
func (m *MockRepository) Quiz() repositories.QuizRepository           { return m.quizzes }
func (m *MockRepository) Attempt() repositories.AttemptRepository     { return m.attempts }

// ===== EVENT PUBLISHER MOCK =====

// CapturingPublisher records every published event for inspection.
type CapturingPublisher struct {
	Events []*events.StudyEvent
}

func (p *CapturingPublisher) PublishStudyEvent(ctx context.Context, event *events.StudyEvent) error {
	p.Events = append(p.Events, event)
	return nil
}

func (p *CapturingPublisher) Close() error { return nil }

// ===== TEST CLOCK =====

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
