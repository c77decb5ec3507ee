package services

import (
	"context"
	"math/rand"
	"strings"

	"github.com/exam-pulse/study-service/internal/events"
	"github.com/exam-pulse/study-service/internal/models"
)

// ===== GRADING =====

// gradeAnswer checks a submission against the question's answer key.
// Multiple-choice is a case-sensitive exact match against the text of the
// option flagged correct; every other type compares case-insensitively with
// the stored correct answer.
func gradeAnswer(question *models.Question, submitted string) bool {
	if question.QuestionType == models.MultipleChoice {
		correct := question.CorrectOption()
		return correct != nil && correct.Text == submitted
	}
	return strings.ToLower(question.CorrectAnswer) == strings.ToLower(submitted)
}

// ===== AGGREGATE STATISTICS =====

// updateAggregates folds a completed attempt into the quiz and question
// counters. These are derived statistics, not the system of record: failures
// are logged and never unwind the attempt's completed status.
func (s *attemptService) updateAggregates(ctx context.Context, attempt *models.QuizAttempt, percentage int) {
	if err := s.repo.Quiz().RecordAttemptScore(ctx, attempt.QuizID, percentage); err != nil {
		s.logger.Error("Failed to update quiz statistics",
			"quiz_id", attempt.QuizID,
			"attempt_id", attempt.ID,
			"error", err)
	}

	for _, answer := range attempt.Answers {
		if !answer.Answered() {
			continue
		}
		if err := s.repo.Question().RecordAnswerStat(ctx, answer.QuestionID, answer.IsCorrect, answer.TimeSpent); err != nil {
			s.logger.Error("Failed to update question statistics",
				"question_id", answer.QuestionID,
				"attempt_id", attempt.ID,
				"error", err)
		}
	}
}

// ===== QUIZ VIEW =====

// buildQuizView renders the quiz for an active attempt. Randomization,
// when enabled, shuffles copies only; the persisted question order stays
// canonical so per-question statistics remain addressable by id.
func (s *attemptService) buildQuizView(quiz *models.Quiz) *QuizView {
	view := &QuizView{
		ID:        quiz.ID,
		Title:     quiz.Title,
		Subject:   quiz.Subject,
		TimeLimit: quiz.Settings.TimeLimit,
		Questions: make([]QuizQuestionView, len(quiz.Questions)),
	}

	for i, qq := range quiz.Questions {
		view.Questions[i] = QuizQuestionView{
			QuestionID:   qq.QuestionID,
			QuestionText: qq.Question.QuestionText,
			QuestionType: qq.Question.QuestionType,
			Options:      optionTexts(qq.Question.Options),
			Points:       qq.Points,
		}
		if quiz.Settings.RandomizeOptions {
			shuffle(view.Questions[i].Options)
		}
	}

	if quiz.Settings.RandomizeQuestions {
		shuffle(view.Questions)
	}

	return view
}

// optionTexts strips options down to their display text, dropping the
// correctness flags so the view cannot leak the answer key.
func optionTexts(options []models.QuestionOption) []string {
	if len(options) == 0 {
		return nil
	}
	texts := make([]string, len(options))
	for i, opt := range options {
		texts[i] = opt.Text
	}
	return texts
}

func shuffle[T any](items []T) {
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// ===== ABANDONMENT =====

func (s *attemptService) abandonAttempt(ctx context.Context, attempt *models.QuizAttempt, reason string) error {
	attempt.Status = models.AttemptAbandoned

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return err
	}

	s.logger.Info("Quiz attempt abandoned",
		"attempt_id", attempt.ID,
		"quiz_id", attempt.QuizID,
		"reason", reason)

	event := events.NewStudyEvent(events.EventAttemptAbandoned, s.clock.Now(), events.AttemptAbandonedPayload{
		AttemptID: attempt.ID,
		QuizID:    attempt.QuizID,
		UserID:    attempt.UserID,
		Reason:    reason,
	})
	if err := s.publisher.PublishStudyEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt abandoned event", "attempt_id", attempt.ID, "error", err)
	}

	return nil
}
