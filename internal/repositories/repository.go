package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates per-entity repositories behind one access point.
type Repository interface {
	Flashcard() FlashcardRepository
	Question() QuestionRepository
	Quiz() QuizRepository
	Attempt() AttemptRepository
}

// IsNotFoundError reports whether err is the store's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
