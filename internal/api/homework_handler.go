package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HomeworkHandler exposes workout logging and coach review.
type HomeworkHandler struct {
	homeworkService service.HomeworkService
}

// NewHomeworkHandler creates a new HomeworkHandler.
func NewHomeworkHandler(homeworkService service.HomeworkService) *HomeworkHandler {
	return &HomeworkHandler{homeworkService: homeworkService}
}

// --- Request Structs ---

type WorkoutLogRequest struct {
	ExerciseID    *string          `json:"exerciseId"`
	BlueprintID   *string          `json:"blueprintId"`
	LogDate       time.Time        `json:"logDate" binding:"required"`
	Content       map[string]any   `json:"content"`
	Intensity     domain.Intensity `json:"intensity" binding:"required,oneof=LOW MEDIUM HIGH"`
	MaxWeight     float64          `json:"maxWeight"`
	TotalVolume   float64          `json:"totalVolume"`
	TotalDuration int              `json:"totalDuration"`
}

type CoachCommentRequest struct {
	Comment string `json:"comment"`
}

// toInput converts the request, parsing the optional hex references.
func (r WorkoutLogRequest) toInput() (service.WorkoutLogInput, error) {
	input := service.WorkoutLogInput{
		LogDate:       r.LogDate,
		Content:       r.Content,
		Intensity:     r.Intensity,
		MaxWeight:     r.MaxWeight,
		TotalVolume:   r.TotalVolume,
		TotalDuration: r.TotalDuration,
	}
	if r.ExerciseID != nil {
		id, err := primitive.ObjectIDFromHex(*r.ExerciseID)
		if err != nil {
			return input, fmt.Errorf("invalid exerciseId format")
		}
		input.ExerciseID = &id
	}
	if r.BlueprintID != nil {
		id, err := primitive.ObjectIDFromHex(*r.BlueprintID)
		if err != nil {
			return input, fmt.Errorf("invalid blueprintId format")
		}
		input.BlueprintID = &id
	}
	return input, nil
}

// --- Member Handlers ---

// CreateWorkoutLog handles POST /member/workout-logs.
func (h *HomeworkHandler) CreateWorkoutLog(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	var req WorkoutLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	log, err := h.homeworkService.CreateWorkoutLog(c.Request.Context(), userID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

// GetMemberLogs handles GET /member/workout-logs. An optional exerciseId
// query parameter narrows the history to one exercise.
func (h *HomeworkHandler) GetMemberLogs(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	var exerciseID *primitive.ObjectID
	if raw := c.Query("exerciseId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
			return
		}
		exerciseID = &id
	}

	logs, err := h.homeworkService.GetMemberLogs(c.Request.Context(), userID, exerciseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// UpdateWorkoutLog handles PUT /member/workout-logs/:logId.
func (h *HomeworkHandler) UpdateWorkoutLog(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	logID, ok := pathObjectID(c, "logId")
	if !ok {
		return
	}

	var req WorkoutLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	log, err := h.homeworkService.UpdateWorkoutLog(c.Request.Context(), userID, logID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// DeleteWorkoutLog handles DELETE /member/workout-logs/:logId.
func (h *HomeworkHandler) DeleteWorkoutLog(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	logID, ok := pathObjectID(c, "logId")
	if !ok {
		return
	}

	if err := h.homeworkService.DeleteWorkoutLog(c.Request.Context(), userID, logID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Coach Handlers ---

// GetHomeworkSubmissions handles GET /coach/programs/:programId/homework.
// Requires phase and day query parameters identifying the planning cell.
func (h *HomeworkHandler) GetHomeworkSubmissions(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}
	phase, err := strconv.Atoi(c.Query("phase"))
	if err != nil || phase < 1 {
		abortWithError(c, http.StatusBadRequest, "Invalid phase parameter")
		return
	}
	day, err := strconv.Atoi(c.Query("day"))
	if err != nil || day < 1 {
		abortWithError(c, http.StatusBadRequest, "Invalid day parameter")
		return
	}

	submissions, err := h.homeworkService.GetHomeworkSubmissions(c.Request.Context(), coachID, programID, phase, day)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submissions)
}

// GetHomeworkStats handles GET /coach/programs/:programId/homework/stats.
func (h *HomeworkHandler) GetHomeworkStats(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	stats, err := h.homeworkService.GetHomeworkStats(c.Request.Context(), coachID, programID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UpdateCoachComment handles PATCH /coach/workout-logs/:logId/comment.
func (h *HomeworkHandler) UpdateCoachComment(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	logID, ok := pathObjectID(c, "logId")
	if !ok {
		return
	}

	var req CoachCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.homeworkService.UpdateCoachComment(c.Request.Context(), coachID, logID, req.Comment); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleCoachCheck handles POST /coach/workout-logs/:logId/check.
func (h *HomeworkHandler) ToggleCoachCheck(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	logID, ok := pathObjectID(c, "logId")
	if !ok {
		return
	}

	checked, err := h.homeworkService.ToggleCoachCheck(c.Request.Context(), coachID, logID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checked": checked})
}
