package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daysegment/backend/internal/middleware"
	"daysegment/backend/internal/service"
)

type SegmentHandler struct {
	segmentService *service.SegmentService
}

type segmentRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Color     string `json:"color"`
}

func NewSegmentHandler(segmentService *service.SegmentService) *SegmentHandler {
	return &SegmentHandler{segmentService: segmentService}
}

func (h *SegmentHandler) Create(c *gin.Context) {
	var req segmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	segment, apiErr := h.segmentService.Create(c.Request.Context(), userID, service.SegmentInput{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Color:     req.Color,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"segment": segment})
}

func (h *SegmentHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	segments, apiErr := h.segmentService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": segments})
}

func (h *SegmentHandler) Update(c *gin.Context) {
	var req segmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	segment, apiErr := h.segmentService.Update(c.Request.Context(), userID, c.Param("id"), service.SegmentInput{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Color:     req.Color,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segment": segment})
}

func (h *SegmentHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.segmentService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
