package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daysegment/backend/internal/middleware"
	"daysegment/backend/internal/service"
)

type TemplateHandler struct {
	templateService *service.TemplateService
}

type templateRequest struct {
	Name                 string   `json:"name"`
	Type                 string   `json:"type"`
	Priority             *string  `json:"priority"`
	CategoryID           *string  `json:"categoryId"`
	PreferredSegmentID   *string  `json:"preferredSegmentId"`
	IsRecurring          bool     `json:"isRecurring"`
	TimerDurationSeconds *int     `json:"timerDurationSeconds"`
	AlarmTime            *string  `json:"alarmTime"`
	Subtasks             []string `json:"subtasks"`
}

func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	template, apiErr := h.templateService.Create(c.Request.Context(), userID, service.TemplateInput{
		Name:                 req.Name,
		Type:                 req.Type,
		Priority:             req.Priority,
		CategoryID:           req.CategoryID,
		PreferredSegmentID:   req.PreferredSegmentID,
		IsRecurring:          req.IsRecurring,
		TimerDurationSeconds: req.TimerDurationSeconds,
		AlarmTime:            req.AlarmTime,
		Subtasks:             req.Subtasks,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": template})
}

func (h *TemplateHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	templates, apiErr := h.templateService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	template, subtasks, apiErr := h.templateService.Get(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": template, "subtaskTemplates": subtasks})
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.templateService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TemplateHandler) Instantiate(c *gin.Context) {
	userID := middleware.UserID(c)
	task, apiErr := h.templateService.Instantiate(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}
