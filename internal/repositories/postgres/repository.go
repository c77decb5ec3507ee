package postgres

import (
	"github.com/exam-pulse/study-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the gorm-backed aggregate repository.
type Repository struct {
	flashcards repositories.FlashcardRepository
	questions  repositories.QuestionRepository
	quizzes    repositories.QuizRepository
	attempts   repositories.AttemptRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		flashcards: NewFlashcardPostgreSQL(db),
		questions:  NewQuestionPostgreSQL(db),
		quizzes:    NewQuizPostgreSQL(db),
		attempts:   NewAttemptPostgreSQL(db),
	}
}

func (r *Repository) Flashcard() repositories.FlashcardRepository { return r.flashcards }
func (r *Repository) Question() repositories.QuestionRepository   { return r.questions }
func (r *Repository) Quiz() repositories.QuizRepository           { return r.quizzes }
func (r *Repository) Attempt() repositories.AttemptRepository     { return r.attempts }
