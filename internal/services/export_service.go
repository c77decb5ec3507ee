package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService renders flashcards and quiz results as downloadable files.
type ExportService interface {
	ExportFlashcardsToCSV(ctx context.Context, filters repositories.FlashcardFilters) ([]byte, error)
	ExportFlashcardsToExcel(ctx context.Context, filters repositories.FlashcardFilters) ([]byte, error)
	ExportQuizResults(ctx context.Context, quizID uint) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var flashcardExportHeaders = []string{
	"Front", "Back", "Subject", "Topics", "Difficulty", "Tags",
	"Interval (days)", "Ease Factor", "Next Review", "Total Reviews", "Correct Reviews", "Streak",
}

func (s *exportService) ExportFlashcardsToCSV(ctx context.Context, filters repositories.FlashcardFilters) ([]byte, error) {
	cards, _, err := s.repo.Flashcard().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(flashcardExportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, card := range cards {
		if err := writer.Write(s.flashcardToRow(card)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	s.logger.Info("Flashcards exported to CSV", "count", len(cards))
	return []byte(buf.String()), nil
}

func (s *exportService) ExportFlashcardsToExcel(ctx context.Context, filters repositories.FlashcardFilters) ([]byte, error) {
	cards, _, err := s.repo.Flashcard().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Flashcards"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range flashcardExportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, card := range cards {
		for colIndex, value := range s.flashcardToRow(card) {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Flashcards exported to Excel", "count", len(cards))
	return buf.Bytes(), nil
}

// ExportQuizResults writes one row per attempt of the quiz, completed or not.
func (s *exportService) ExportQuizResults(ctx context.Context, quizID uint) ([]byte, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	attempts, _, err := s.repo.Attempt().List(ctx, repositories.AttemptFilters{
		QuizID:    &quizID,
		SortBy:    "started_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"User ID", "Session ID", "Status", "Started At", "Completed At",
		"Earned Points", "Total Points", "Percentage", "Result", "Time Spent (minutes)",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		row := []interface{}{
			attempt.UserID,
			attempt.SessionID,
			string(attempt.Status),
			attempt.StartedAt.Format("2006-01-02 15:04:05"),
		}

		if attempt.CompletedAt != nil {
			row = append(row, attempt.CompletedAt.Format("2006-01-02 15:04:05"))
		} else {
			row = append(row, "")
		}

		row = append(row, attempt.Score.EarnedPoints, attempt.Score.TotalPoints, attempt.Score.Percentage)

		if attempt.Status != models.AttemptCompleted {
			row = append(row, "")
		} else if attempt.Score.Percentage >= quiz.Settings.PassingScore {
			row = append(row, "Pass")
		} else {
			row = append(row, "Fail")
		}

		row = append(row, attempt.TimeSpent/60)

		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Quiz results exported", "quiz_id", quizID, "attempts", len(attempts))
	return buf.Bytes(), nil
}

func (s *exportService) flashcardToRow(card *models.Flashcard) []string {
	return []string{
		card.Front,
		card.Back,
		card.Subject,
		strings.Join(card.Topics, ","),
		string(card.Difficulty),
		strings.Join(card.Tags, ","),
		strconv.Itoa(card.SpacedRepetition.Interval),
		strconv.FormatFloat(card.SpacedRepetition.EaseFactor, 'f', 2, 64),
		card.SpacedRepetition.NextReview.Format("2006-01-02"),
		strconv.Itoa(card.Performance.TotalReviews),
		strconv.Itoa(card.Performance.CorrectReviews),
		strconv.Itoa(card.Performance.StreakCount),
	}
}
