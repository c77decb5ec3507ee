package services

import (
	"errors"
	"fmt"

	apperrors "github.com/exam-pulse/study-service/internal/errors"
	"github.com/exam-pulse/study-service/internal/scheduler"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Review specific errors
	// ErrInvalidResponse is the scheduler's sentinel so errors.Is works
	// across both layers.
	ErrInvalidResponse = scheduler.ErrInvalidResponse

	// Flashcard specific errors
	ErrFlashcardNotFound = errors.New("flashcard not found")

	// Question specific errors
	ErrQuestionNotFound = errors.New("question not found")

	// Quiz specific errors
	ErrQuizNotFound = errors.New("quiz not found")
	ErrQuizEmpty    = errors.New("quiz has no questions to attempt")
	ErrQuizInactive = errors.New("quiz is no longer available")

	// Attempt specific errors
	ErrAttemptNotFound         = errors.New("quiz attempt not found")
	ErrAttemptNotActive        = errors.New("quiz attempt is not active")
	ErrAttemptAlreadyCompleted = errors.New("quiz attempt has already been completed")
	ErrQuestionNotInAttempt    = errors.New("question is not part of this quiz attempt")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFlashcardNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrQuizEmpty) ||
		errors.Is(err, ErrQuestionNotInAttempt) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptNotActive) ||
		errors.Is(err, ErrAttemptAlreadyCompleted) ||
		errors.Is(err, ErrQuizInactive)
}
