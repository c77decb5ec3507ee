package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizSettings controls how a quiz is rendered and scored.
type QuizSettings struct {
	TimeLimit          *int `json:"time_limit"` // minutes, nil = untimed
	RandomizeQuestions bool `json:"randomize_questions" gorm:"default:false"`
	RandomizeOptions   bool `json:"randomize_options" gorm:"default:false"`
	ShowCorrectAnswers bool `json:"show_correct_answers" gorm:"default:true"`
	AllowRetakes       bool `json:"allow_retakes" gorm:"default:true"`
	PassingScore       int  `json:"passing_score" gorm:"default:70" validate:"min=0,max=100"`
}

// QuizQuestion is an ordered quiz/question join row. Position is the
// canonical order; randomization never touches it.
type QuizQuestion struct {
	QuizID     uint `json:"quiz_id" gorm:"primaryKey"`
	QuestionID uint `json:"question_id" gorm:"primaryKey"`
	Position   int  `json:"position" gorm:"not null"`
	Points     int  `json:"points" gorm:"default:1" validate:"min=1"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

type Quiz struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	Title       string                      `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string                     `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Subject     string                      `json:"subject" gorm:"not null;size:100;index:idx_quizzes_subject_difficulty" validate:"required,max=100"`
	Difficulty  DifficultyLevel             `json:"difficulty" gorm:"default:mixed;index:idx_quizzes_subject_difficulty" validate:"omitempty,oneof=easy medium hard mixed"`
	Topics      datatypes.JSONSlice[string] `json:"topics"`

	Questions []QuizQuestion `json:"questions" gorm:"foreignKey:QuizID"`
	Settings  QuizSettings   `json:"settings" gorm:"embedded;embeddedPrefix:settings_"`

	IsActive  bool   `json:"is_active" gorm:"default:true;index"`
	CreatedBy string `json:"created_by" gorm:"size:100"`

	// Aggregate attempt statistics, maintained by atomic store updates only.
	TotalAttempts int     `json:"total_attempts" gorm:"default:0"`
	AverageScore  float64 `json:"average_score" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
