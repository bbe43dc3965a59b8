package api

import (
	"fmt"
	"net/http"

	"mkhwan/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgramHandler holds the program service dependency.
type ProgramHandler struct {
	programService service.ProgramService
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// ProgramRequest carries the coach-editable program attributes. Used for
// both create and full update.
type ProgramRequest struct {
	Title             string `json:"title" binding:"required"`
	Description       string `json:"description"`
	CurriculumSummary string `json:"curriculumSummary"`
	Price             int64  `json:"price" binding:"min=0"`
	ProgramType       string `json:"programType"`
	Difficulty        string `json:"difficulty"`
	DurationWeeks     int    `json:"durationWeeks" binding:"min=0"`
	DaysPerWeek       int    `json:"daysPerWeek" binding:"min=0,max=7"`
	AccessPeriodDays  int    `json:"accessPeriodDays" binding:"min=0"`
	IsPublic          bool   `json:"isPublic"`
	IsForSale         bool   `json:"isForSale"`
}

func (r ProgramRequest) toInput() service.ProgramInput {
	return service.ProgramInput{
		Title:             r.Title,
		Description:       r.Description,
		CurriculumSummary: r.CurriculumSummary,
		Price:             r.Price,
		ProgramType:       r.ProgramType,
		Difficulty:        r.Difficulty,
		DurationWeeks:     r.DurationWeeks,
		DaysPerWeek:       r.DaysPerWeek,
		AccessPeriodDays:  r.AccessPeriodDays,
		IsPublic:          r.IsPublic,
		IsForSale:         r.IsForSale,
	}
}

// CreateProgram handles POST /coach/programs.
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	program, err := h.programService.CreateProgram(c.Request.Context(), coachID, req.toInput())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, program)
}

// GetCoachPrograms handles GET /coach/programs.
func (h *ProgramHandler) GetCoachPrograms(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	programs, err := h.programService.GetCoachPrograms(c.Request.Context(), coachID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

// UpdateProgram handles PUT /coach/programs/:programId.
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	program, err := h.programService.UpdateProgram(c.Request.Context(), coachID, programID, req.toInput())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}

// ListCatalog handles GET /programs, the member-facing store catalog.
func (h *ProgramHandler) ListCatalog(c *gin.Context) {
	programs, err := h.programService.ListOnSale(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

// GetProgram handles GET /programs/:programId.
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	program, err := h.programService.GetProgram(c.Request.Context(), programID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}
