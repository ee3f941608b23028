package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daysegment/backend/internal/middleware"
	"daysegment/backend/internal/repository"
	"daysegment/backend/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

type createTaskRequest struct {
	Name                 string     `json:"name"`
	Type                 string     `json:"type"`
	Priority             *string    `json:"priority"`
	DueDate              *time.Time `json:"dueDate"`
	IsRecurring          bool       `json:"isRecurring"`
	PreferredSegmentID   *string    `json:"preferredSegmentId"`
	CategoryID           *string    `json:"categoryId"`
	TimerDurationSeconds *int       `json:"timerDurationSeconds"`
	AlarmTime            *string    `json:"alarmTime"`
}

type updateTaskRequest struct {
	Name                 *string    `json:"name"`
	Priority             *string    `json:"priority"`
	DueDate              *time.Time `json:"dueDate"`
	IsRecurring          *bool      `json:"isRecurring"`
	PreferredSegmentID   *string    `json:"preferredSegmentId"`
	CategoryID           *string    `json:"categoryId"`
	TimerDurationSeconds *int       `json:"timerDurationSeconds"`
	AlarmTime            *string    `json:"alarmTime"`
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	task, apiErr := h.taskService.Create(c.Request.Context(), userID, service.CreateTaskInput{
		Name:                 req.Name,
		Type:                 req.Type,
		Priority:             req.Priority,
		DueDate:              req.DueDate,
		IsRecurring:          req.IsRecurring,
		PreferredSegmentID:   req.PreferredSegmentID,
		CategoryID:           req.CategoryID,
		TimerDurationSeconds: req.TimerDurationSeconds,
		AlarmTime:            req.AlarmTime,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *TaskHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	filter := repository.TaskFilter{
		Status:     c.Query("status"),
		SegmentID:  c.Query("segmentId"),
		CategoryID: c.Query("categoryId"),
	}

	tasks, apiErr := h.taskService.List(c.Request.Context(), userID, filter)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	task, apiErr := h.taskService.Get(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) Update(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	task, apiErr := h.taskService.Update(c.Request.Context(), userID, c.Param("id"), service.UpdateTaskInput{
		Name:                 req.Name,
		Priority:             req.Priority,
		DueDate:              req.DueDate,
		IsRecurring:          req.IsRecurring,
		PreferredSegmentID:   req.PreferredSegmentID,
		CategoryID:           req.CategoryID,
		TimerDurationSeconds: req.TimerDurationSeconds,
		AlarmTime:            req.AlarmTime,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.taskService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) Start(c *gin.Context) {
	userID := middleware.UserID(c)
	task, apiErr := h.taskService.Start(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) Complete(c *gin.Context) {
	userID := middleware.UserID(c)
	task, apiErr := h.taskService.Complete(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) AddTallyMark(c *gin.Context) {
	userID := middleware.UserID(c)
	task, apiErr := h.taskService.AddTallyMark(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}
