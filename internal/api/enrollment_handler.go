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

// EnrollmentHandler exposes program membership management.
type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// --- Request Structs ---

type EnrollRequest struct {
	ProgramID string `json:"programId" binding:"required"`
}

type UpdateEnrollmentStatusRequest struct {
	Status domain.EnrollmentStatus `json:"status" binding:"required,oneof=ACTIVE EXPIRED PAUSED"`
}

// UpdateEnrollmentDateRequest sets or clears one access date. A null date
// clears the field (unscheduled start / unlimited access).
type UpdateEnrollmentDateRequest struct {
	Date *time.Time `json:"date"`
}

type ExtendEnrollmentRequest struct {
	Days int `json:"days" binding:"required,min=1"`
}

// --- Handler Methods ---

// Enroll handles POST /member/enrollments.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	programID, err := primitive.ObjectIDFromHex(req.ProgramID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid programId format")
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), userID, programID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// GetProgramEnrollments handles GET /coach/programs/:programId/enrollments.
func (h *EnrollmentHandler) GetProgramEnrollments(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	enrollments, err := h.enrollmentService.GetProgramEnrollments(c.Request.Context(), coachID, programID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// GetMemberStats handles GET /coach/programs/:programId/enrollments/stats.
func (h *EnrollmentHandler) GetMemberStats(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	stats, err := h.enrollmentService.GetMemberStats(c.Request.Context(), coachID, programID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetExpiringEnrollments handles GET /coach/programs/:programId/enrollments/expiring.
// The "days" query parameter bounds the lookahead window (default 7).
func (h *EnrollmentHandler) GetExpiringEnrollments(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid days parameter")
		return
	}

	enrollments, err := h.enrollmentService.GetExpiringEnrollments(c.Request.Context(), coachID, programID, days)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// UpdateStatus handles PATCH /coach/enrollments/:enrollmentId/status.
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	enrollmentID, ok := pathObjectID(c, "enrollmentId")
	if !ok {
		return
	}

	var req UpdateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.enrollmentService.UpdateStatus(c.Request.Context(), coachID, enrollmentID, req.Status); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStartDate handles PATCH /coach/enrollments/:enrollmentId/start-date.
func (h *EnrollmentHandler) UpdateStartDate(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	enrollmentID, ok := pathObjectID(c, "enrollmentId")
	if !ok {
		return
	}

	var req UpdateEnrollmentDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.enrollmentService.UpdateStartDate(c.Request.Context(), coachID, enrollmentID, req.Date); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateEndDate handles PATCH /coach/enrollments/:enrollmentId/end-date.
func (h *EnrollmentHandler) UpdateEndDate(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	enrollmentID, ok := pathObjectID(c, "enrollmentId")
	if !ok {
		return
	}

	var req UpdateEnrollmentDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.enrollmentService.UpdateEndDate(c.Request.Context(), coachID, enrollmentID, req.Date); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Extend handles POST /coach/enrollments/:enrollmentId/extend.
func (h *EnrollmentHandler) Extend(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	enrollmentID, ok := pathObjectID(c, "enrollmentId")
	if !ok {
		return
	}

	var req ExtendEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	enrollment, err := h.enrollmentService.Extend(c.Request.Context(), coachID, enrollmentID, req.Days)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}
