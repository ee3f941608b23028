package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daysegment/backend/internal/analytics"
	"daysegment/backend/internal/middleware"
	"daysegment/backend/internal/model"
	"daysegment/backend/internal/repository"
)

// AnalyticsHandler loads completion history plus the supporting task and
// segment lists and feeds them through the pure aggregators.
type AnalyticsHandler struct {
	completionRepo *repository.CompletionRepository
	taskRepo       *repository.TaskRepository
	segmentRepo    *repository.SegmentRepository
}

func NewAnalyticsHandler(
	completionRepo *repository.CompletionRepository,
	taskRepo *repository.TaskRepository,
	segmentRepo *repository.SegmentRepository,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		completionRepo: completionRepo,
		taskRepo:       taskRepo,
		segmentRepo:    segmentRepo,
	}
}

func (h *AnalyticsHandler) Productivity(c *gin.Context) {
	userID := middleware.UserID(c)

	completions, segments, _, ok := h.load(c, userID, true, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"productivity": analytics.ProductivityBySegment(completions, segments)})
}

func (h *AnalyticsHandler) CompletionByType(c *gin.Context) {
	userID := middleware.UserID(c)

	completions, _, tasks, ok := h.load(c, userID, false, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"completionByType": analytics.CompletionByTaskType(completions, tasks)})
}

func (h *AnalyticsHandler) Heatmap(c *gin.Context) {
	userID := middleware.UserID(c)

	completions, _, _, ok := h.load(c, userID, false, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"heatmap": analytics.HeatmapData(completions)})
}

func (h *AnalyticsHandler) Streaks(c *gin.Context) {
	userID := middleware.UserID(c)

	completions, _, tasks, ok := h.load(c, userID, false, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"streaks": analytics.StreakData(completions, tasks, time.Now())})
}

func (h *AnalyticsHandler) load(
	c *gin.Context,
	userID string,
	withSegments, withTasks bool,
) (completions []model.TaskCompletion, segments []model.Segment, tasks []model.Task, ok bool) {
	var err error

	completions, err = h.completionRepo.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, nil)
		return nil, nil, nil, false
	}
	if withSegments {
		segments, err = h.segmentRepo.List(c.Request.Context(), userID)
		if err != nil {
			writeError(c, nil)
			return nil, nil, nil, false
		}
	}
	if withTasks {
		tasks, err = h.taskRepo.List(c.Request.Context(), userID, repository.TaskFilter{})
		if err != nil {
			writeError(c, nil)
			return nil, nil, nil, false
		}
	}
	return completions, segments, tasks, true
}
