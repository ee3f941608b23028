package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daysegment/backend/internal/middleware"
	"daysegment/backend/internal/service"
)

type CollectionHandler struct {
	collectionService *service.CollectionService
}

type collectionRequest struct {
	Name        string `json:"name"`
	IsRecurring bool   `json:"isRecurring"`
}

type collectionTaskRequest struct {
	TaskID string `json:"taskId"`
}

func NewCollectionHandler(collectionService *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

func (h *CollectionHandler) Create(c *gin.Context) {
	var req collectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	collection, apiErr := h.collectionService.Create(c.Request.Context(), userID, service.CollectionInput{
		Name:        req.Name,
		IsRecurring: req.IsRecurring,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"collection": collection})
}

func (h *CollectionHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	collections, apiErr := h.collectionService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

func (h *CollectionHandler) Update(c *gin.Context) {
	var req collectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	collection, apiErr := h.collectionService.Update(c.Request.Context(), userID, c.Param("id"), service.CollectionInput{
		Name:        req.Name,
		IsRecurring: req.IsRecurring,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": collection})
}

func (h *CollectionHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.collectionService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollectionHandler) AddTask(c *gin.Context) {
	var req collectionTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	if apiErr := h.collectionService.AddTask(c.Request.Context(), userID, c.Param("id"), req.TaskID); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollectionHandler) RemoveTask(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.collectionService.RemoveTask(c.Request.Context(), userID, c.Param("id"), c.Param("taskId")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollectionHandler) ListTasks(c *gin.Context) {
	userID := middleware.UserID(c)
	tasks, apiErr := h.collectionService.ListTasks(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
