// Package scheduler implements the spaced-repetition schedule for flashcards:
// an SM-2 interval law driven by four review grades (again/hard/good/easy)
// instead of the classic 0-5 quality scale. All functions are pure; callers
// persist the returned state.
package scheduler

import (
	"errors"
	"math"
	"time"

	"github.com/exam-pulse/study-service/internal/models"
)

var ErrInvalidResponse = errors.New("invalid review response: must be again, hard, good or easy")

const (
	// MinEaseFactor is the SM-2 lower bound for the ease factor.
	MinEaseFactor = 1.3

	// InitialInterval and InitialEaseFactor are the state of a fresh card.
	InitialInterval   = 1
	InitialEaseFactor = 2.5

	secondInterval = 6
)

// quality maps graded responses onto the SM-2 quality scale. "again" is a
// lapse and is handled separately, so it has no entry here.
var quality = map[models.ReviewResponse]float64{
	models.ResponseHard: 3,
	models.ResponseGood: 4,
	models.ResponseEasy: 5,
}

// NewState returns the schedule state of a card that has never been reviewed.
// The card is due immediately.
func NewState(now time.Time) models.SpacedRepetition {
	return models.SpacedRepetition{
		Interval:   InitialInterval,
		Repetition: 0,
		EaseFactor: InitialEaseFactor,
		NextReview: now,
	}
}

// Review applies one review grade to the schedule and performance state and
// returns the updated copies. The update rules:
//
//   - good/easy increment CorrectReviews and the streak; again/hard reset the
//     streak, and hard does not count as correct.
//   - again is a lapse: repetition and interval reset, ease factor untouched.
//   - otherwise the repetition advances and the interval follows 1, 6,
//     round(interval * easeFactor), where the growth step uses the ease
//     factor from before this review's ease update.
//   - the ease factor then moves by 0.1 - (5-q)*(0.08 + (5-q)*0.02) for
//     q in {hard:3, good:4, easy:5}, clamped at MinEaseFactor.
func Review(sr models.SpacedRepetition, perf models.ReviewPerformance, response models.ReviewResponse, now time.Time) (models.SpacedRepetition, models.ReviewPerformance, error) {
	if !response.Valid() {
		return sr, perf, ErrInvalidResponse
	}

	perf.TotalReviews++
	perf.LastResponse = response
	if response == models.ResponseGood || response == models.ResponseEasy {
		perf.CorrectReviews++
		perf.StreakCount++
	} else {
		perf.StreakCount = 0
	}

	if response == models.ResponseAgain {
		sr.Repetition = 0
		sr.Interval = InitialInterval
	} else {
		sr.Repetition++
		switch sr.Repetition {
		case 1:
			sr.Interval = InitialInterval
		case 2:
			sr.Interval = secondInterval
		default:
			sr.Interval = int(math.Round(float64(sr.Interval) * sr.EaseFactor))
		}

		q := quality[response]
		sr.EaseFactor += 0.1 - (5-q)*(0.08+(5-q)*0.02)
		if sr.EaseFactor < MinEaseFactor {
			sr.EaseFactor = MinEaseFactor
		}
	}

	sr.NextReview = now.AddDate(0, 0, sr.Interval)
	sr.LastReviewed = &now

	return sr, perf, nil
}

// DueForReview reports whether the card should be offered in a study session
// as of the given time. Inactive cards are never due.
func DueForReview(card *models.Flashcard, asOf time.Time) bool {
	return card.IsActive && !card.SpacedRepetition.NextReview.After(asOf)
}
