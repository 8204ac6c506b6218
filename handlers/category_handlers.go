package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/api/apperr"
	"storefront/api/models"
)

type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, input models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type CategoryHandlers struct {
	store CategoryStore
	log   *zap.Logger
}

func NewCategoryHandlers(store CategoryStore, log *zap.Logger) *CategoryHandlers {
	return &CategoryHandlers{store: store, log: log}
}

func (h *CategoryHandlers) CreateCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		respondError(c, h.log, apperr.Validation("Category name is required"))
		return
	}

	category := &models.Category{Name: strings.TrimSpace(*input.Name)}
	if input.Description != nil {
		category.Description = *input.Description
	}

	created, err := h.store.CreateCategory(c.Request.Context(), category)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CategoryHandlers) ListCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandlers) UpdateCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		respondError(c, h.log, apperr.Validation("Category name must not be empty"))
		return
	}

	updated, err := h.store.UpdateCategory(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CategoryHandlers) DeleteCategory(c *gin.Context) {
	if err := h.store.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
