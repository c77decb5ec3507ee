package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	ShortAnswer    QuestionType = "short-answer"
	Essay          QuestionType = "essay"
	FillBlank      QuestionType = "fill-blank"
)

type QuestionSource string

const (
	SourceAI        QuestionSource = "ai"
	SourceExtracted QuestionSource = "extracted"
	SourceManual    QuestionSource = "manual"
)

// QuestionOption is one choice of a multiple-choice question. Exactly one
// option carries IsCorrect for that type.
type QuestionOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionPerformance struct {
	CorrectAnswers int     `json:"correct_answers" gorm:"default:0"`
	TotalAttempts  int     `json:"total_attempts" gorm:"default:0"`
	AverageTime    float64 `json:"average_time" gorm:"default:0"` // seconds
}

type Question struct {
	ID           uint                                `json:"id" gorm:"primaryKey"`
	QuestionText string                              `json:"question_text" gorm:"not null;type:text" validate:"required"`
	QuestionType QuestionType                        `json:"question_type" gorm:"not null;index" validate:"required,question_type"`
	Options      datatypes.JSONSlice[QuestionOption] `json:"options"`

	// CorrectAnswer is the answer key for non-choice types.
	CorrectAnswer string  `json:"correct_answer"`
	Explanation   *string `json:"explanation" gorm:"type:text"`

	Difficulty DifficultyLevel             `json:"difficulty" gorm:"default:medium;index:idx_questions_subject_difficulty" validate:"omitempty,oneof=easy medium hard"`
	Subject    string                      `json:"subject" gorm:"not null;size:100;index:idx_questions_subject_difficulty" validate:"required,max=100"`
	Topics     datatypes.JSONSlice[string] `json:"topics"`
	Keywords   datatypes.JSONSlice[string] `json:"keywords"`

	GeneratedBy   QuestionSource `json:"generated_by" gorm:"default:ai;index" validate:"omitempty,oneof=ai extracted manual"`
	EstimatedTime int            `json:"estimated_time" gorm:"default:2"` // minutes

	UsageCount  int                 `json:"usage_count" gorm:"default:0"`
	Performance QuestionPerformance `json:"performance" gorm:"embedded;embeddedPrefix:perf_"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOption returns the option flagged correct, or nil when none is.
func (q *Question) CorrectOption() *QuestionOption {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}
