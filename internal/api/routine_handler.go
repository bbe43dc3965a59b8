package api

import (
	"fmt"
	"net/http"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineHandler exposes routine block management for coaches.
type RoutineHandler struct {
	routineService service.RoutineService
}

// NewRoutineHandler creates a new RoutineHandler.
func NewRoutineHandler(routineService service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

// --- Request Structs ---

type CreateRoutineBlockRequest struct {
	Name   string               `json:"name" binding:"required"`
	Format domain.WorkoutFormat `json:"format" binding:"required"`
}

type UpdateRoutineBlockRequest struct {
	Name               string               `json:"name" binding:"required"`
	Format             domain.WorkoutFormat `json:"format" binding:"required"`
	TargetValue        string               `json:"targetValue"`
	Description        string               `json:"description"`
	LeaderboardEnabled bool                 `json:"leaderboardEnabled"`
}

type AddRoutineItemRequest struct {
	ExerciseID     string         `json:"exerciseId" binding:"required"`
	Recommendation map[string]any `json:"recommendation"`
}

// --- Handler Methods ---

// CreateRoutineBlock handles POST /coach/routine-blocks.
func (h *RoutineHandler) CreateRoutineBlock(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	var req CreateRoutineBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	block, err := h.routineService.CreateRoutineBlock(c.Request.Context(), coachID, req.Name, req.Format)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

// GetCoachRoutineBlocks handles GET /coach/routine-blocks.
func (h *RoutineHandler) GetCoachRoutineBlocks(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}

	blocks, err := h.routineService.GetCoachRoutineBlocks(c.Request.Context(), coachID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

// GetRoutineBlock handles GET /coach/routine-blocks/:blockId.
func (h *RoutineHandler) GetRoutineBlock(c *gin.Context) {
	blockID, ok := pathObjectID(c, "blockId")
	if !ok {
		return
	}

	block, err := h.routineService.GetRoutineBlock(c.Request.Context(), blockID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, block)
}

// UpdateRoutineBlock handles PUT /coach/routine-blocks/:blockId.
func (h *RoutineHandler) UpdateRoutineBlock(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blockID, ok := pathObjectID(c, "blockId")
	if !ok {
		return
	}

	var req UpdateRoutineBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	block, err := h.routineService.UpdateRoutineBlock(c.Request.Context(), coachID, blockID, service.RoutineBlockInput{
		Name:               req.Name,
		Format:             req.Format,
		TargetValue:        req.TargetValue,
		Description:        req.Description,
		LeaderboardEnabled: req.LeaderboardEnabled,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, block)
}

// DeleteRoutineBlock handles DELETE /coach/routine-blocks/:blockId.
func (h *RoutineHandler) DeleteRoutineBlock(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blockID, ok := pathObjectID(c, "blockId")
	if !ok {
		return
	}

	if err := h.routineService.DeleteRoutineBlock(c.Request.Context(), coachID, blockID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddRoutineItem handles POST /coach/routine-blocks/:blockId/items.
func (h *RoutineHandler) AddRoutineItem(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blockID, ok := pathObjectID(c, "blockId")
	if !ok {
		return
	}

	var req AddRoutineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
		return
	}

	item, err := h.routineService.AddRoutineItem(c.Request.Context(), coachID, blockID, exerciseID, req.Recommendation)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DeleteRoutineItem handles DELETE /coach/routine-blocks/:blockId/items/:itemId.
func (h *RoutineHandler) DeleteRoutineItem(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blockID, ok := pathObjectID(c, "blockId")
	if !ok {
		return
	}
	itemID, ok := pathObjectID(c, "itemId")
	if !ok {
		return
	}

	if err := h.routineService.DeleteRoutineItem(c.Request.Context(), coachID, blockID, itemID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderRoutineItems handles PUT /coach/routine-blocks/:blockId/items/order.
func (h *RoutineHandler) ReorderRoutineItems(c *gin.Context) {
	coachID, ok := currentUserObjectID(c)
	if !ok {
		return
	}
	blockID, ok := pathObjectID(c, "blockId")
	if !ok {
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	itemIDs, err := parseOrderedIDs(req.IDs)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.routineService.ReorderRoutineItems(c.Request.Context(), coachID, blockID, itemIDs); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
