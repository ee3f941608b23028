package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daysegment/backend/internal/middleware"
	"daysegment/backend/internal/service"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
}

type categoryRequest struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Icon        *string `json:"icon"`
	Description *string `json:"description"`
	IsDefault   bool    `json:"isDefault"`
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	category, apiErr := h.categoryService.Create(c.Request.Context(), userID, service.CategoryInput{
		Name:        req.Name,
		Color:       req.Color,
		Icon:        req.Icon,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	categories, apiErr := h.categoryService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	category, apiErr := h.categoryService.Update(c.Request.Context(), userID, c.Param("id"), service.CategoryInput{
		Name:        req.Name,
		Color:       req.Color,
		Icon:        req.Icon,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.categoryService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
