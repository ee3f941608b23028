package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"daysegment/backend/internal/offline"
)

// PushHandler resolves an incoming push message the way the worker's push
// and notificationclick handlers do: apply payload defaults, then decide
// whether a click should focus an open window or open a new one.
type PushHandler struct{}

type pushResolveRequest struct {
	OpenClients []string `json:"openClients"`
}

func NewPushHandler() *PushHandler {
	return &PushHandler{}
}

func (h *PushHandler) Receive(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeInvalidJSON(c)
		return
	}

	payload := offline.ParsePushPayload(raw)
	c.JSON(http.StatusOK, gin.H{"notification": payload})
}

func (h *PushHandler) ResolveClick(c *gin.Context) {
	var req pushResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	target := c.Query("url")
	if target == "" {
		target = offline.DefaultPushURL
	}

	focusIndex, openNew := offline.ResolveClick(req.OpenClients, target)
	c.JSON(http.StatusOK, gin.H{
		"focusIndex": focusIndex,
		"openNew":    openNew,
		"url":        target,
	})
}
