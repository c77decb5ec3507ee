package handlers

import (
	"net/http"

	"github.com/exam-pulse/study-service/internal/models"
	"github.com/exam-pulse/study-service/internal/repositories"
	"github.com/exam-pulse/study-service/internal/services"
	"github.com/exam-pulse/study-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type FlashcardHandler struct {
	BaseHandler
	flashcardService services.FlashcardService
	reviewService    services.ReviewService
	exportService    services.ExportService
}

func NewFlashcardHandler(
	flashcardService services.FlashcardService,
	reviewService services.ReviewService,
	exportService services.ExportService,
	logger utils.Logger,
) *FlashcardHandler {
	return &FlashcardHandler{
		BaseHandler:      NewBaseHandler(logger),
		flashcardService: flashcardService,
		reviewService:    reviewService,
		exportService:    exportService,
	}
}

// CreateFlashcard creates a new flashcard
// @Router /flashcards [post]
func (h *FlashcardHandler) CreateFlashcard(c *gin.Context) {
	h.LogRequest(c, "Creating flashcard")

	var req services.CreateFlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	card, err := h.flashcardService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, card)
}

type createFromQuestionsRequest struct {
	QuestionIDs []uint `json:"question_ids" binding:"required,min=1"`
}

// CreateFromQuestions bulk-creates flashcards from existing questions
// @Router /flashcards/from-questions [post]
func (h *FlashcardHandler) CreateFromQuestions(c *gin.Context) {
	h.LogRequest(c, "Creating flashcards from questions")

	var req createFromQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	cards, err := h.flashcardService.CreateFromQuestions(c.Request.Context(), req.QuestionIDs)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ListResponse{Items: cards, Total: int64(len(cards))})
}

// ListFlashcards lists flashcards with filters and pagination
// @Router /flashcards [get]
func (h *FlashcardHandler) ListFlashcards(c *gin.Context) {
	filters := h.parseFlashcardFilters(c)

	cards, total, err := h.flashcardService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: cards, Total: total})
}

// GetFlashcard retrieves a flashcard by ID
// @Router /flashcards/{id} [get]
func (h *FlashcardHandler) GetFlashcard(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	card, err := h.flashcardService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

// UpdateFlashcard updates flashcard content
// @Router /flashcards/{id} [put]
func (h *FlashcardHandler) UpdateFlashcard(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating flashcard", "card_id", id)

	var req services.UpdateFlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	card, err := h.flashcardService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

// DeleteFlashcard soft-deletes a flashcard
// @Router /flashcards/{id} [delete]
func (h *FlashcardHandler) DeleteFlashcard(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deactivating flashcard", "card_id", id)

	if err := h.flashcardService.Deactivate(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Flashcard deactivated"})
}

type reviewFlashcardRequest struct {
	Response models.ReviewResponse `json:"response" binding:"required"`
}

// ReviewFlashcard grades a flashcard and reschedules it
// @Router /flashcards/{id}/review [post]
func (h *FlashcardHandler) ReviewFlashcard(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req reviewFlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.reviewService.Review(c.Request.Context(), id, req.Response)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStudySession returns the cards due for review, most overdue first
// @Router /flashcards/study-session [get]
func (h *FlashcardHandler) GetStudySession(c *gin.Context) {
	var subject *string
	if s := c.Query("subject"); s != "" {
		subject = &s
	}
	limit := parseIntQuery(c, "limit", 0)

	cards, err := h.reviewService.StudySession(c.Request.Context(), subject, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: cards, Total: int64(len(cards))})
}

// GetFlashcardStats returns aggregate review statistics
// @Router /flashcards/stats [get]
func (h *FlashcardHandler) GetFlashcardStats(c *gin.Context) {
	var subject *string
	if s := c.Query("subject"); s != "" {
		subject = &s
	}

	stats, err := h.flashcardService.GetStats(c.Request.Context(), subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportFlashcards streams the filtered flashcards as CSV or Excel
// @Router /flashcards/export [get]
func (h *FlashcardHandler) ExportFlashcards(c *gin.Context) {
	filters := h.parseFlashcardFilters(c)
	filters.Limit = 0 // export is never paginated
	filters.Offset = 0

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		data, err := h.exportService.ExportFlashcardsToCSV(c.Request.Context(), filters)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="flashcards.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "xlsx":
		data, err := h.exportService.ExportFlashcardsToExcel(c.Request.Context(), filters)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="flashcards.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: format,
		})
	}
}

func (h *FlashcardHandler) parseFlashcardFilters(c *gin.Context) repositories.FlashcardFilters {
	limit, offset := parsePagination(c)

	filters := repositories.FlashcardFilters{
		Limit:  limit,
		Offset: offset,
	}

	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		diffLevel := models.DifficultyLevel(difficulty)
		filters.Difficulty = &diffLevel
	}
	if topic := c.Query("topic"); topic != "" {
		filters.Topic = &topic
	}
	if c.Query("due") == "true" {
		filters.DueForReview = true
	}

	return filters
}
