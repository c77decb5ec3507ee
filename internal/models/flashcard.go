package models

import (
	"time"

	"gorm.io/datatypes"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
	DifficultyMixed  DifficultyLevel = "mixed" // quizzes only
)

type ReviewResponse string

const (
	ResponseAgain ReviewResponse = "again"
	ResponseHard  ReviewResponse = "hard"
	ResponseGood  ReviewResponse = "good"
	ResponseEasy  ReviewResponse = "easy"
)

// Valid reports whether r is one of the four review grades.
func (r ReviewResponse) Valid() bool {
	switch r {
	case ResponseAgain, ResponseHard, ResponseGood, ResponseEasy:
		return true
	}
	return false
}

// SpacedRepetition holds the SM-2 schedule state of a flashcard.
// NextReview is always derived by the scheduler, never set by clients.
type SpacedRepetition struct {
	Interval     int        `json:"interval" gorm:"default:1" validate:"min=1"`
	Repetition   int        `json:"repetition" gorm:"default:0" validate:"min=0"`
	EaseFactor   float64    `json:"ease_factor" gorm:"default:2.5" validate:"min=1.3"`
	NextReview   time.Time  `json:"next_review" gorm:"index"`
	LastReviewed *time.Time `json:"last_reviewed"`
}

// ReviewPerformance tracks review accuracy. CorrectReviews never exceeds
// TotalReviews; only good/easy grades count as correct.
type ReviewPerformance struct {
	TotalReviews   int            `json:"total_reviews" gorm:"default:0"`
	CorrectReviews int            `json:"correct_reviews" gorm:"default:0"`
	StreakCount    int            `json:"streak_count" gorm:"default:0"`
	LastResponse   ReviewResponse `json:"last_response" validate:"omitempty,oneof=again hard good easy"`
}

type Flashcard struct {
	ID         uint                        `json:"id" gorm:"primaryKey"`
	Front      string                      `json:"front" gorm:"not null;type:text" validate:"required"`
	Back       string                      `json:"back" gorm:"not null;type:text" validate:"required"`
	Subject    string                      `json:"subject" gorm:"not null;size:100;index:idx_flashcards_subject_difficulty" validate:"required,max=100"`
	Topics     datatypes.JSONSlice[string] `json:"topics"`
	Difficulty DifficultyLevel             `json:"difficulty" gorm:"default:medium;index:idx_flashcards_subject_difficulty" validate:"omitempty,oneof=easy medium hard"`
	Tags       datatypes.JSONSlice[string] `json:"tags"`

	SourceQuestionID *uint `json:"source_question_id" gorm:"index"`

	SpacedRepetition SpacedRepetition  `json:"spaced_repetition" gorm:"embedded;embeddedPrefix:sr_"`
	Performance      ReviewPerformance `json:"performance" gorm:"embedded;embeddedPrefix:perf_"`

	IsActive bool `json:"is_active" gorm:"default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}
