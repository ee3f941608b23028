package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daysegment/backend/internal/middleware"
	"daysegment/backend/internal/service"
)

type SubtaskHandler struct {
	subtaskService *service.SubtaskService
}

type addSubtaskRequest struct {
	Name string `json:"name"`
}

type reorderSubtasksRequest struct {
	SubtaskIDs []string `json:"subtaskIds"`
}

func NewSubtaskHandler(subtaskService *service.SubtaskService) *SubtaskHandler {
	return &SubtaskHandler{subtaskService: subtaskService}
}

func (h *SubtaskHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	subtasks, apiErr := h.subtaskService.List(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtasks": subtasks})
}

func (h *SubtaskHandler) Add(c *gin.Context) {
	var req addSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	subtask, apiErr := h.subtaskService.Add(c.Request.Context(), userID, c.Param("id"), req.Name)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subtask": subtask})
}

func (h *SubtaskHandler) Toggle(c *gin.Context) {
	userID := middleware.UserID(c)
	subtask, apiErr := h.subtaskService.Toggle(c.Request.Context(), userID, c.Param("id"), c.Param("subtaskId"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtask": subtask})
}

func (h *SubtaskHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.subtaskService.Delete(c.Request.Context(), userID, c.Param("id"), c.Param("subtaskId")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubtaskHandler) Reorder(c *gin.Context) {
	var req reorderSubtasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	if apiErr := h.subtaskService.Reorder(c.Request.Context(), userID, c.Param("id"), req.SubtaskIDs); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
