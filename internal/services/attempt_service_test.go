package services

import (
	"context"
	"testing"
	"time"

	"github.com/exam-pulse/study-service/internal/events"
	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var attemptTestTime = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func newTestAttemptService(repo *MockRepository, publisher *CapturingPublisher) AttemptService {
	return NewAttemptService(repo, testLogger(), utils.NewValidator(), publisher, fixedClock{now: attemptTestTime})
}

func testQuiz() *models.Quiz {
	return &models.Quiz{
		ID:      1,
		Title:   "Networking Basics",
		Subject: "networking",
		Settings: models.QuizSettings{
			ShowCorrectAnswers: true,
			AllowRetakes:       true,
			PassingScore:       70,
		},
		IsActive: true,
		Questions: []models.QuizQuestion{
			{
				QuizID:     1,
				QuestionID: 10,
				Position:   0,
				Points:     1,
				Question: models.Question{
					ID:           10,
					QuestionText: "Which layer does TCP live on?",
					QuestionType: models.MultipleChoice,
					Options: []models.QuestionOption{
						{Text: "Transport", IsCorrect: true},
						{Text: "Network", IsCorrect: false},
						{Text: "Application", IsCorrect: false},
					},
				},
			},
			{
				QuizID:     1,
				QuestionID: 11,
				Position:   1,
				Points:     1,
				Question: models.Question{
					ID:            11,
					QuestionText:  "What does DNS resolve?",
					QuestionType:  models.ShortAnswer,
					CorrectAnswer: "Hostnames",
				},
			},
			{
				QuizID:     1,
				QuestionID: 12,
				Position:   2,
				Points:     1,
				Question: models.Question{
					ID:            12,
					QuestionText:  "UDP is connection-oriented.",
					QuestionType:  models.TrueFalse,
					CorrectAnswer: "false",
				},
			},
		},
	}
}

func inProgressAttempt(quiz *models.Quiz) *models.QuizAttempt {
	answers := make([]models.AttemptAnswer, len(quiz.Questions))
	for i, qq := range quiz.Questions {
		answers[i] = models.AttemptAnswer{QuestionID: qq.QuestionID}
	}
	return &models.QuizAttempt{
		ID:        100,
		QuizID:    quiz.ID,
		UserID:    "user-1",
		SessionID: "session-1",
		Answers:   answers,
		Score:     models.AttemptScore{TotalPoints: len(answers)},
		Status:    models.AttemptInProgress,
		StartedAt: attemptTestTime.Add(-10 * time.Minute),
	}
}

func TestAttemptService_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("creates one answer slot per question in canonical order", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := &CapturingPublisher{}
		service := newTestAttemptService(repo, publisher)

		quiz := testQuiz()
		repo.quizzes.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(quiz, nil)
		repo.attempts.On("Create", mock.Anything, mock.MatchedBy(func(a *models.QuizAttempt) bool {
			return a.Status == models.AttemptInProgress && len(a.Answers) == 3
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.QuizAttempt).ID = 100
		}).Return(nil)

		result, err := service.Start(ctx, &StartAttemptRequest{QuizID: 1, UserID: "user-1"})
		require.NoError(t, err)

		assert.Equal(t, uint(100), result.AttemptID)
		assert.NotEmpty(t, result.SessionID)
		assert.Equal(t, attemptTestTime, result.StartedAt)

		require.Len(t, result.Quiz.Questions, 3)
		assert.Equal(t, uint(10), result.Quiz.Questions[0].QuestionID)
		assert.Equal(t, uint(11), result.Quiz.Questions[1].QuestionID)
		assert.Equal(t, uint(12), result.Quiz.Questions[2].QuestionID)

		repo.attempts.AssertExpectations(t)
	})

	t.Run("quiz view never carries the answer key", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		quiz := testQuiz()
		repo.quizzes.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(quiz, nil)
		repo.attempts.On("Create", mock.Anything, mock.Anything).Return(nil)

		result, err := service.Start(ctx, &StartAttemptRequest{QuizID: 1})
		require.NoError(t, err)

		mc := result.Quiz.Questions[0]
		assert.ElementsMatch(t, []string{"Transport", "Network", "Application"}, mc.Options)
		// Short-answer and true-false views expose no options at all.
		assert.Nil(t, result.Quiz.Questions[1].Options)
	})

	t.Run("rejects unknown quiz", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		repo.quizzes.On("GetByIDWithQuestions", mock.Anything, uint(7)).Return(nil, gorm.ErrRecordNotFound)

		_, err := service.Start(ctx, &StartAttemptRequest{QuizID: 7})
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})

	t.Run("rejects inactive quiz", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		quiz := testQuiz()
		quiz.IsActive = false
		repo.quizzes.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(quiz, nil)

		_, err := service.Start(ctx, &StartAttemptRequest{QuizID: 1})
		assert.ErrorIs(t, err, ErrQuizInactive)
	})

	t.Run("rejects quiz without questions", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		quiz := testQuiz()
		quiz.Questions = nil
		repo.quizzes.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(quiz, nil)

		_, err := service.Start(ctx, &StartAttemptRequest{QuizID: 1})
		assert.ErrorIs(t, err, ErrQuizEmpty)
	})

	t.Run("enforces retake policy for known users", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		quiz := testQuiz()
		quiz.Settings.AllowRetakes = false
		repo.quizzes.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(quiz, nil)
		repo.attempts.On("HasCompletedAttempt", mock.Anything, uint(1), "user-1").Return(true, nil)

		_, err := service.Start(ctx, &StartAttemptRequest{QuizID: 1, UserID: "user-1"})
		assert.True(t, IsBusinessRule(err))

		var ruleErr *BusinessRuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "retakes-not-allowed", ruleErr.Rule)
	})
}

func TestAttemptService_Answer(t *testing.T) {
	ctx := context.Background()

	t.Run("multiple choice grades by exact option text", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		quiz := testQuiz()
		attempt := inProgressAttempt(quiz)
		repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)
		repo.questions.On("GetByID", mock.Anything, uint(10)).Return(&quiz.Questions[0].Question, nil)
		repo.attempts.On("Update", mock.Anything, attempt).Return(nil)

		result, err := service.Answer(ctx, 100, &SubmitAnswerRequest{QuestionID: 10, Answer: "Transport", TimeSpent: 12})
		require.NoError(t, err)
		assert.True(t, result.IsCorrect)
		assert.Equal(t, 1, result.PointsEarned)

		// Case matters for option matching.
		result, err = service.Answer(ctx, 100, &SubmitAnswerRequest{QuestionID: 10, Answer: "transport", TimeSpent: 3})
		require.NoError(t, err)
		assert.False(t, result.IsCorrect)
	})

	t.Run("short answer grades case-insensitively", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		quiz := testQuiz()
		attempt := inProgressAttempt(quiz)
		repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)
		repo.questions.On("GetByID", mock.Anything, uint(11)).Return(&quiz.Questions[1].Question, nil)
		repo.attempts.On("Update", mock.Anything, attempt).Return(nil)

		result, err := service.Answer(ctx, 100, &SubmitAnswerRequest{QuestionID: 11, Answer: "HOSTNAMES", TimeSpent: 5})
		require.NoError(t, err)
		assert.True(t, result.IsCorrect)
	})

	t.Run("re-answering replaces the slot wholesale", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		quiz := testQuiz()
		attempt := inProgressAttempt(quiz)
		repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)
		repo.questions.On("GetByID", mock.Anything, uint(12)).Return(&quiz.Questions[2].Question, nil)
		repo.attempts.On("Update", mock.Anything, attempt).Return(nil)

		_, err := service.Answer(ctx, 100, &SubmitAnswerRequest{QuestionID: 12, Answer: "true", TimeSpent: 30})
		require.NoError(t, err)

		_, err = service.Answer(ctx, 100, &SubmitAnswerRequest{QuestionID: 12, Answer: "false", TimeSpent: 8})
		require.NoError(t, err)

		// Still exactly one slot for the question, holding only the last
		// submission.
		require.Len(t, attempt.Answers, 3)
		slot := attempt.Answers[attempt.AnswerSlot(12)]
		require.NotNil(t, slot.SelectedAnswer)
		assert.Equal(t, "false", *slot.SelectedAnswer)
		assert.True(t, slot.IsCorrect)
		assert.Equal(t, 8, slot.TimeSpent)
	})

	t.Run("rejects question outside the attempt", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		attempt := inProgressAttempt(testQuiz())
		repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)

		_, err := service.Answer(ctx, 100, &SubmitAnswerRequest{QuestionID: 999, Answer: "x"})
		assert.ErrorIs(t, err, ErrQuestionNotInAttempt)
	})

	t.Run("rejects answers on a finished attempt", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		attempt := inProgressAttempt(testQuiz())
		attempt.Status = models.AttemptCompleted
		repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)

		_, err := service.Answer(ctx, 100, &SubmitAnswerRequest{QuestionID: 10, Answer: "Transport"})
		assert.ErrorIs(t, err, ErrAttemptNotActive)
	})
}

func TestAttemptService_Complete(t *testing.T) {
	ctx := context.Background()

	answered := func(attempt *models.QuizAttempt, questionID uint, answer string, correct bool, timeSpent int) {
		slot := attempt.AnswerSlot(questionID)
		points := 0
		if correct {
			points = 1
		}
		attempt.Answers[slot] = models.AttemptAnswer{
			QuestionID:     questionID,
			SelectedAnswer: &answer,
			IsCorrect:      correct,
			TimeSpent:      timeSpent,
			PointsEarned:   points,
		}
	}

	t.Run("scores the attempt and records aggregates", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := &CapturingPublisher{}
		service := newTestAttemptService(repo, publisher)

		quiz := testQuiz()
		attempt := inProgressAttempt(quiz)
		answered(attempt, 10, "Transport", true, 20)
		answered(attempt, 11, "hostnames", true, 15)
		// Question 12 left unanswered.

		repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)
		repo.quizzes.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
		repo.attempts.On("Update", mock.Anything, attempt).Return(nil)
		repo.quizzes.On("RecordAttemptScore", mock.Anything, uint(1), 67).Return(nil)
		repo.questions.On("RecordAnswerStat", mock.Anything, uint(10), true, 20).Return(nil)
		repo.questions.On("RecordAnswerStat", mock.Anything, uint(11), true, 15).Return(nil)

		result, err := service.Complete(ctx, 100)
		require.NoError(t, err)

		// 2/3 correct rounds to 67 and misses the 70% passing bar.
		assert.Equal(t, 67, result.Score.Percentage)
		assert.Equal(t, 2, result.Score.EarnedPoints)
		assert.Equal(t, 3, result.Score.TotalPoints)
		assert.Equal(t, 35, result.TimeSpent)
		assert.False(t, result.Passed)

		assert.Equal(t, models.AttemptCompleted, attempt.Status)
		require.NotNil(t, attempt.CompletedAt)
		assert.Equal(t, attemptTestTime, *attempt.CompletedAt)

		// Unanswered slots must not touch question statistics.
		repo.questions.AssertNotCalled(t, "RecordAnswerStat", mock.Anything, uint(12), mock.Anything, mock.Anything)
		repo.quizzes.AssertExpectations(t)
		repo.questions.AssertExpectations(t)

		require.Len(t, publisher.Events, 1)
		assert.Equal(t, events.EventAttemptCompleted, publisher.Events[0].Type)
	})

	t.Run("passing is a greater-or-equal comparison", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		quiz := testQuiz()
		quiz.Settings.PassingScore = 67
		attempt := inProgressAttempt(quiz)
		answered(attempt, 10, "Transport", true, 1)
		answered(attempt, 11, "hostnames", true, 1)
		answered(attempt, 12, "true", false, 1)

		repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)
		repo.quizzes.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
		repo.attempts.On("Update", mock.Anything, attempt).Return(nil)
		repo.quizzes.On("RecordAttemptScore", mock.Anything, uint(1), 67).Return(nil)
		repo.questions.On("RecordAnswerStat", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := service.Complete(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 67, result.Score.Percentage)
		assert.True(t, result.Passed)
	})

	t.Run("aggregate failures do not fail the completion", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		quiz := testQuiz()
		attempt := inProgressAttempt(quiz)
		answered(attempt, 10, "Transport", true, 5)

		repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)
		repo.quizzes.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
		repo.attempts.On("Update", mock.Anything, attempt).Return(nil)
		repo.quizzes.On("RecordAttemptScore", mock.Anything, uint(1), 33).Return(assert.AnError)
		repo.questions.On("RecordAnswerStat", mock.Anything, uint(10), true, 5).Return(assert.AnError)

		result, err := service.Complete(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 33, result.Score.Percentage)
	})

	t.Run("completed and abandoned attempts are terminal", func(t *testing.T) {
		terminal := map[models.AttemptStatus]error{
			models.AttemptCompleted: ErrAttemptAlreadyCompleted,
			models.AttemptAbandoned: ErrAttemptNotActive,
		}
		for status, want := range terminal {
			repo := NewMockRepository()
			service := newTestAttemptService(repo, &CapturingPublisher{})

			attempt := inProgressAttempt(testQuiz())
			attempt.Status = status
			repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)

			_, err := service.Complete(ctx, 100)
			assert.ErrorIs(t, err, want, "status %s", status)
			assert.True(t, IsConflict(err), "status %s", status)
		}
	})
}

func TestAttemptService_Abandon(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the attempt abandoned and publishes an event", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := &CapturingPublisher{}
		service := newTestAttemptService(repo, publisher)

		attempt := inProgressAttempt(testQuiz())
		repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)
		repo.attempts.On("Update", mock.Anything, attempt).Return(nil)

		require.NoError(t, service.Abandon(ctx, 100))
		assert.Equal(t, models.AttemptAbandoned, attempt.Status)

		require.Len(t, publisher.Events, 1)
		assert.Equal(t, events.EventAttemptAbandoned, publisher.Events[0].Type)
		payload := publisher.Events[0].Payload.(events.AttemptAbandonedPayload)
		assert.Equal(t, "explicit", payload.Reason)
	})

	t.Run("abandoning a finished attempt is rejected", func(t *testing.T) {
		repo := NewMockRepository()
		service := newTestAttemptService(repo, &CapturingPublisher{})

		attempt := inProgressAttempt(testQuiz())
		attempt.Status = models.AttemptCompleted
		repo.attempts.On("GetByID", mock.Anything, uint(100)).Return(attempt, nil)

		assert.ErrorIs(t, service.Abandon(ctx, 100), ErrAttemptNotActive)
	})
}

func TestAttemptService_ExpireStale(t *testing.T) {
	ctx := context.Background()

	repo := NewMockRepository()
	publisher := &CapturingPublisher{}
	service := newTestAttemptService(repo, publisher)

	quiz := testQuiz()
	stale1 := inProgressAttempt(quiz)
	stale2 := inProgressAttempt(quiz)
	stale2.ID = 101

	cutoff := attemptTestTime.Add(-2 * time.Hour)
	repo.attempts.On("GetStaleInProgress", mock.Anything, cutoff).
		Return([]*models.QuizAttempt{stale1, stale2}, nil)
	repo.attempts.On("Update", mock.Anything, mock.Anything).Return(nil)

	expired, err := service.ExpireStale(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, expired)

	assert.Equal(t, models.AttemptAbandoned, stale1.Status)
	assert.Equal(t, models.AttemptAbandoned, stale2.Status)

	require.Len(t, publisher.Events, 2)
	for _, event := range publisher.Events {
		payload := event.Payload.(events.AttemptAbandonedPayload)
		assert.Equal(t, "idle-expiry", payload.Reason)
	}
}
