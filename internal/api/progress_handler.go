package api

import (
	"net/http"
	"strconv"

	"mkhwan/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressHandler exposes the performance dashboards.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetMemberProgress handles GET /member/progress. An optional exerciseId
// query parameter narrows the summary to one exercise.
func (h *ProgressHandler) GetMemberProgress(c *gin.Context) {
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

	summary, err := h.progressService.GetMemberProgress(c.Request.Context(), userID, exerciseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetExerciseTrend handles GET /member/progress/trend. Requires an
// exerciseId query parameter; months defaults to 3.
func (h *ProgressHandler) GetExerciseTrend(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	exerciseID, err := primitive.ObjectIDFromHex(c.Query("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
		return
	}
	months, err := strconv.Atoi(c.DefaultQuery("months", "3"))
	if err != nil || months < 1 {
		abortWithError(c, http.StatusBadRequest, "Invalid months parameter")
		return
	}

	trend, err := h.progressService.GetExerciseTrend(c.Request.Context(), userID, exerciseID, months)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

// GetMemberProgressForCoach handles
// GET /coach/programs/:programId/members/:memberId/progress.
func (h *ProgressHandler) GetMemberProgressForCoach(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}
	memberID, ok := pathObjectID(c, "memberId")
	if !ok {
		return
	}

	summary, err := h.progressService.GetMemberProgressForCoach(c.Request.Context(), coachID, programID, memberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
