package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories"
	"github.com/exam-pulse/study-service/internal/utils"
)

func newTestQuizService(repo *MockRepository) QuizService {
	return NewQuizService(repo, testLogger(), utils.NewValidator())
}

func TestQuizService_Create(t *testing.T) {
	validReq := func() *CreateQuizRequest {
		return &CreateQuizRequest{
			Title:   "Networking Basics",
			Subject: "networking",
			Questions: []QuizQuestionRequest{
				{QuestionID: 10},
				{QuestionID: 11, Points: 2},
			},
		}
	}

	t.Run("applies defaults", func(t *testing.T) {
		repo := NewMockRepository()
		repo.questions.On("GetByIDs", mock.Anything, []uint{10, 11}).Return([]*models.Question{
			{ID: 10}, {ID: 11},
		}, nil)
		repo.quizzes.On("Create", mock.Anything, mock.AnythingOfType("*models.Quiz")).Return(nil)

		quiz, err := newTestQuizService(repo).Create(context.Background(), validReq())
		require.NoError(t, err)

		assert.Equal(t, models.DifficultyMixed, quiz.Difficulty)
		assert.True(t, quiz.IsActive)
		assert.True(t, quiz.Settings.ShowCorrectAnswers)
		assert.True(t, quiz.Settings.AllowRetakes)
		assert.Equal(t, 70, quiz.Settings.PassingScore)

		require.Len(t, quiz.Questions, 2)
		assert.Equal(t, 0, quiz.Questions[0].Position)
		assert.Equal(t, 1, quiz.Questions[0].Points) // defaulted
		assert.Equal(t, 1, quiz.Questions[1].Position)
		assert.Equal(t, 2, quiz.Questions[1].Points)
	})

	t.Run("rejects duplicate question ids", func(t *testing.T) {
		repo := NewMockRepository()
		req := validReq()
		req.Questions = append(req.Questions, QuizQuestionRequest{QuestionID: 10})

		_, err := newTestQuizService(repo).Create(context.Background(), req)
		assert.True(t, IsValidation(err))
		repo.questions.AssertNotCalled(t, "GetByIDs")
	})

	t.Run("rejects missing questions", func(t *testing.T) {
		repo := NewMockRepository()
		repo.questions.On("GetByIDs", mock.Anything, []uint{10, 11}).Return([]*models.Question{
			{ID: 10},
		}, nil)

		_, err := newTestQuizService(repo).Create(context.Background(), validReq())
		assert.ErrorIs(t, err, ErrQuestionNotFound)
		repo.quizzes.AssertNotCalled(t, "Create")
	})

	t.Run("rejects empty question list", func(t *testing.T) {
		repo := NewMockRepository()
		req := validReq()
		req.Questions = nil

		_, err := newTestQuizService(repo).Create(context.Background(), req)
		assert.True(t, IsValidation(err))
	})
}

func TestQuizService_GetByID(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo := NewMockRepository()
		repo.quizzes.On("GetByID", mock.Anything, uint(404)).Return(nil, gorm.ErrRecordNotFound)

		_, err := newTestQuizService(repo).GetByID(context.Background(), 404)
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})

	t.Run("found", func(t *testing.T) {
		repo := NewMockRepository()
		repo.quizzes.On("GetByID", mock.Anything, uint(1)).Return(&models.Quiz{ID: 1, Title: "Basics"}, nil)

		quiz, err := newTestQuizService(repo).GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Basics", quiz.Title)
	})
}

func TestQuizService_GetAttemptStats(t *testing.T) {
	repo := NewMockRepository()
	quiz := testQuiz()
	repo.quizzes.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.attempts.On("GetStats", mock.Anything, uint(1), 70).Return(&repositories.QuizAttemptStats{
		TotalAttempts:     4,
		CompletedAttempts: 3,
		AverageScore:      72.5,
		PassRate:          66.7,
	}, nil)

	stats, err := newTestQuizService(repo).GetAttemptStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalAttempts)
	assert.InDelta(t, 72.5, stats.AverageScore, 1e-9)
}
