package api

import (
	"fmt"
	"net/http"
	"strconv"

	"mkhwan/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlannerHandler exposes the program planning grid.
type PlannerHandler struct {
	plannerService service.PlannerService
}

// NewPlannerHandler creates a new PlannerHandler.
func NewPlannerHandler(plannerService service.PlannerService) *PlannerHandler {
	return &PlannerHandler{plannerService: plannerService}
}

// --- Request Structs ---

type CreatePhaseRequest struct {
	PhaseNumber int `json:"phaseNumber" binding:"required,min=1"`
	DayCount    int `json:"dayCount" binding:"required,min=1,max=7"`
}

type UpdateBlueprintRequest struct {
	// Omitted fields stay unchanged; an explicit empty string clears.
	DayTitle *string `json:"dayTitle"`
	Notes    *string `json:"notes"`
}

type AssignBlockRequest struct {
	BlockID string `json:"blockId" binding:"required"`
}

type OrderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type SectionRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

// parseOrderedIDs converts the hex IDs of an OrderRequest.
func parseOrderedIDs(ids []string) ([]primitive.ObjectID, error) {
	parsed := make([]primitive.ObjectID, len(ids))
	for i, raw := range ids {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid id at position %d", i)
		}
		parsed[i] = id
	}
	return parsed, nil
}

// --- Handler Methods ---

// GetProgramPlan handles GET /coach/programs/:programId/plan.
func (h *PlannerHandler) GetProgramPlan(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	plan, err := h.plannerService.GetProgramPlan(c.Request.Context(), coachID, programID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// CreatePhase handles POST /coach/programs/:programId/phases.
func (h *PlannerHandler) CreatePhase(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	var req CreatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	blueprints, err := h.plannerService.CreatePhase(c.Request.Context(), coachID, programID, req.PhaseNumber, req.DayCount)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, blueprints)
}

// AddDayToPhase handles POST /coach/programs/:programId/phases/:phaseNumber/days.
func (h *PlannerHandler) AddDayToPhase(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}
	phaseNumber, err := strconv.Atoi(c.Param("phaseNumber"))
	if err != nil || phaseNumber < 1 {
		abortWithError(c, http.StatusBadRequest, "Invalid phase number")
		return
	}

	blueprint, err := h.plannerService.AddDayToPhase(c.Request.Context(), coachID, programID, phaseNumber)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, blueprint)
}

// DeletePhase handles DELETE /coach/programs/:programId/phases/:phaseNumber.
func (h *PlannerHandler) DeletePhase(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}
	phaseNumber, err := strconv.Atoi(c.Param("phaseNumber"))
	if err != nil || phaseNumber < 1 {
		abortWithError(c, http.StatusBadRequest, "Invalid phase number")
		return
	}

	if err := h.plannerService.DeletePhase(c.Request.Context(), coachID, programID, phaseNumber); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteDay handles DELETE /coach/blueprints/:blueprintId.
func (h *PlannerHandler) DeleteDay(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blueprintID, ok := pathObjectID(c, "blueprintId")
	if !ok {
		return
	}

	if err := h.plannerService.DeleteDay(c.Request.Context(), coachID, blueprintID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateBlueprint handles PATCH /coach/blueprints/:blueprintId.
func (h *PlannerHandler) UpdateBlueprint(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blueprintID, ok := pathObjectID(c, "blueprintId")
	if !ok {
		return
	}

	var req UpdateBlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.plannerService.UpdateBlueprint(c.Request.Context(), coachID, blueprintID, req.DayTitle, req.Notes); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// === Routine Block Assignment ===

// AssignRoutineBlock handles POST /coach/blueprints/:blueprintId/blocks.
func (h *PlannerHandler) AssignRoutineBlock(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blueprintID, ok := pathObjectID(c, "blueprintId")
	if !ok {
		return
	}

	var req AssignBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	blockID, err := primitive.ObjectIDFromHex(req.BlockID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid blockId format")
		return
	}

	if err := h.plannerService.AssignRoutineBlock(c.Request.Context(), coachID, blueprintID, blockID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnassignRoutineBlock handles DELETE /coach/blueprints/:blueprintId/blocks/:blockId.
func (h *PlannerHandler) UnassignRoutineBlock(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blueprintID, ok := pathObjectID(c, "blueprintId")
	if !ok {
		return
	}
	blockID, ok := pathObjectID(c, "blockId")
	if !ok {
		return
	}

	if err := h.plannerService.UnassignRoutineBlock(c.Request.Context(), coachID, blueprintID, blockID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderRoutineBlocks handles PUT /coach/blueprints/:blueprintId/blocks/order.
func (h *PlannerHandler) ReorderRoutineBlocks(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blueprintID, ok := pathObjectID(c, "blueprintId")
	if !ok {
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	blockIDs, err := parseOrderedIDs(req.IDs)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.plannerService.ReorderRoutineBlocks(c.Request.Context(), coachID, blueprintID, blockIDs); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearRoutineBlocks handles DELETE /coach/blueprints/:blueprintId/blocks.
func (h *PlannerHandler) ClearRoutineBlocks(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blueprintID, ok := pathObjectID(c, "blueprintId")
	if !ok {
		return
	}

	if err := h.plannerService.ClearRoutineBlocks(c.Request.Context(), coachID, blueprintID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// === Day Sections ===

// AddSection handles POST /coach/blueprints/:blueprintId/sections.
func (h *PlannerHandler) AddSection(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blueprintID, ok := pathObjectID(c, "blueprintId")
	if !ok {
		return
	}

	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	section, err := h.plannerService.AddSection(c.Request.Context(), coachID, blueprintID, req.Title, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

// UpdateSection handles PUT /coach/blueprints/:blueprintId/sections/:sectionId.
func (h *PlannerHandler) UpdateSection(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blueprintID, ok := pathObjectID(c, "blueprintId")
	if !ok {
		return
	}
	sectionID, ok := pathObjectID(c, "sectionId")
	if !ok {
		return
	}

	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.plannerService.UpdateSection(c.Request.Context(), coachID, blueprintID, sectionID, req.Title, req.Content); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteSection handles DELETE /coach/blueprints/:blueprintId/sections/:sectionId.
func (h *PlannerHandler) DeleteSection(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blueprintID, ok := pathObjectID(c, "blueprintId")
	if !ok {
		return
	}
	sectionID, ok := pathObjectID(c, "sectionId")
	if !ok {
		return
	}

	if err := h.plannerService.DeleteSection(c.Request.Context(), coachID, blueprintID, sectionID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderSections handles POST /coach/blueprints/:blueprintId/sections/reorder.
func (h *PlannerHandler) ReorderSections(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blueprintID, ok := pathObjectID(c, "blueprintId")
	if !ok {
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	sectionIDs, err := parseOrderedIDs(req.IDs)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.plannerService.ReorderSections(c.Request.Context(), coachID, blueprintID, sectionIDs); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
