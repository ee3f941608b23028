package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daysegment/backend/internal/middleware"
	"daysegment/backend/internal/model"
	"daysegment/backend/internal/service"
	"daysegment/backend/internal/settingsearch"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

type setSettingRequest struct {
	Value string `json:"value"`
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	settings, apiErr := h.settingsService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *SettingsHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	setting, apiErr := h.settingsService.Get(c.Request.Context(), userID, c.Param("key"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

func (h *SettingsHandler) Set(c *gin.Context) {
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	setting, apiErr := h.settingsService.Set(c.Request.Context(), userID, c.Param("key"), req.Value)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

func (h *SettingsHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.settingsService.Delete(c.Request.Context(), userID, c.Param("key")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SettingsHandler) GetNotifications(c *gin.Context) {
	userID := middleware.UserID(c)
	settings, apiErr := h.settingsService.GetNotificationSettings(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notificationSettings": settings})
}

func (h *SettingsHandler) UpdateNotifications(c *gin.Context) {
	var req model.NotificationSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	settings, apiErr := h.settingsService.UpdateNotificationSettings(c.Request.Context(), userID, req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notificationSettings": settings})
}

// Search filters the static settings catalog. The 300ms typing debounce
// lives client-side; the endpoint just answers the settled query.
func (h *SettingsHandler) Search(c *gin.Context) {
	results := settingsearch.Search(c.Query("q"))
	if results == nil {
		results = []settingsearch.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
