package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCardReviewed     EventType = "study.card_reviewed"
	EventAttemptCompleted EventType = "study.attempt_completed"
	EventAttemptAbandoned EventType = "study.attempt_abandoned"
)

const (
	eventSource  = "study-service"
	eventVersion = "1.0"
)

// StudyEvent is the envelope published for every study interaction.
type StudyEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

type CardReviewedPayload struct {
	CardID     uint      `json:"card_id"`
	Subject    string    `json:"subject"`
	Response   string    `json:"response"`
	Interval   int       `json:"interval"`
	EaseFactor float64   `json:"ease_factor"`
	NextReview time.Time `json:"next_review"`
}

type AttemptCompletedPayload struct {
	AttemptID  uint   `json:"attempt_id"`
	QuizID     uint   `json:"quiz_id"`
	UserID     string `json:"user_id"`
	Percentage int    `json:"percentage"`
	Passed     bool   `json:"passed"`
	TimeSpent  int    `json:"time_spent"`
}

type AttemptAbandonedPayload struct {
	AttemptID uint   `json:"attempt_id"`
	QuizID    uint   `json:"quiz_id"`
	UserID    string `json:"user_id"`
	Reason    string `json:"reason"` // "explicit" or "idle-expiry"
}

// NewStudyEvent wraps a payload in a fresh envelope.
func NewStudyEvent(eventType EventType, timestamp time.Time, payload interface{}) *StudyEvent {
	return &StudyEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: timestamp,
		Payload:   payload,
	}
}
