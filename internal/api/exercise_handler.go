package api

import (
	"fmt"
	"net/http"
	"strconv"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler exposes the exercise library.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- Request Structs ---

type ExerciseRequest struct {
	Title          string                  `json:"title" binding:"required"`
	Category       string                  `json:"category"`
	ValueType      domain.WorkoutValueType `json:"valueType" binding:"required,oneof=WEIGHT REPS TIME DISTANCE"`
	Classification domain.Classification   `json:"classification"`
}

type MediaUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// CreateExercise handles POST /coach/exercises.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), coachID, req.Title, req.Category, req.ValueType, req.Classification)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// SearchExercises handles GET /coach/exercises. Query parameters: search,
// category (repeatable), valueType (repeatable), page.
func (h *ExerciseHandler) SearchExercises(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	var valueTypes []domain.WorkoutValueType
	for _, raw := range c.QueryArray("valueType") {
		valueTypes = append(valueTypes, domain.WorkoutValueType(raw))
	}

	result, err := h.exerciseService.SearchExercises(c.Request.Context(), coachID, service.ExerciseSearchInput{
		Search:     c.Query("search"),
		Categories: c.QueryArray("category"),
		ValueTypes: valueTypes,
		Page:       page,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateExercise handles PUT /coach/exercises/:exerciseId.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), coachID, exerciseID, req.Title, req.Category, req.ValueType, req.Classification)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise handles DELETE /coach/exercises/:exerciseId.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), coachID, exerciseID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestMediaUpload handles POST /coach/exercises/:exerciseId/media.
// Returns a presigned PUT URL the client uploads the demo media to.
func (h *ExerciseHandler) RequestMediaUpload(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	var req MediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	uploadURL, err := h.exerciseService.RequestMediaUpload(c.Request.Context(), coachID, exerciseID, req.FileName, req.ContentType)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": uploadURL})
}

// GetMediaDownloadURL handles GET /exercises/:exerciseId/media. Any
// authenticated user may view exercise media.
func (h *ExerciseHandler) GetMediaDownloadURL(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	downloadURL, err := h.exerciseService.GetMediaDownloadURL(c.Request.Context(), exerciseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": downloadURL})
}
