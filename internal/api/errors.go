package api

import (
	"errors"
	"net/http"

	"mkhwan/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// handleServiceError maps the service layer's sentinel errors to HTTP
// statuses. Handlers with endpoint-specific mappings check those first
// and fall back to this.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrInvalidWorkoutFormat),
		errors.Is(err, service.ErrInvalidRecommendation),
		errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidExtension),
		errors.Is(err, service.ErrProgramNotForSale):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoPermission):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrProgramNotFound),
		errors.Is(err, service.ErrBlueprintNotFound),
		errors.Is(err, service.ErrPhaseNotFound),
		errors.Is(err, service.ErrRoutineBlockNotFound),
		errors.Is(err, service.ErrRoutineItemNotFound),
		errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound),
		errors.Is(err, service.ErrWorkoutLogNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPhaseAlreadyExists),
		errors.Is(err, service.ErrPhaseFull),
		errors.Is(err, service.ErrBlockAlreadyAssigned),
		errors.Is(err, service.ErrAlreadyEnrolled):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
