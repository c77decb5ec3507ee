package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in-progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// AttemptAnswer is one answer slot of an attempt. Slots are created at start,
// one per quiz question, and overwritten in place on (re-)submission.
type AttemptAnswer struct {
	QuestionID     uint    `json:"question_id"`
	SelectedAnswer *string `json:"selected_answer"`
	IsCorrect      bool    `json:"is_correct"`
	TimeSpent      int     `json:"time_spent"` // seconds
	PointsEarned   int     `json:"points_earned"`
}

// Answered reports whether the slot holds a submission.
func (a AttemptAnswer) Answered() bool {
	return a.SelectedAnswer != nil
}

type AttemptScore struct {
	TotalPoints  int `json:"total_points"`
	EarnedPoints int `json:"earned_points"`
	Percentage   int `json:"percentage"`
}

type QuizAttempt struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	QuizID    uint   `json:"quiz_id" gorm:"not null;index:idx_attempts_quiz_completed"`
	UserID    string `json:"user_id" gorm:"size:100;index"`
	SessionID string `json:"session_id" gorm:"size:64"`

	// Answers holds exactly one slot per quiz question, fixed at start and
	// never resized.
	Answers datatypes.JSONSlice[AttemptAnswer] `json:"answers"`

	Score     AttemptScore `json:"score" gorm:"embedded;embeddedPrefix:score_"`
	TimeSpent int          `json:"time_spent"` // total seconds

	Status      AttemptStatus `json:"status" gorm:"default:in-progress;index" validate:"omitempty,oneof=in-progress completed abandoned"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at" gorm:"index:idx_attempts_quiz_completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Quiz Quiz `json:"-" gorm:"foreignKey:QuizID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// AnswerSlot returns the index of the slot for questionID, or -1 when the
// question is not part of the attempt.
func (a *QuizAttempt) AnswerSlot(questionID uint) int {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == questionID {
			return i
		}
	}
	return -1
}
