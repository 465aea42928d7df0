package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/electrokart/electrokart_api/internal/service"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// ListCategories handles GET /api/category/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve categories")
		return
	}
	utils.Success(c, 200, "Categories retrieved", categories)
}

// GetCategory handles GET /api/category/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := paramID(c, "id", "category")
	if !ok {
		return
	}

	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to retrieve category")
		return
	}
	utils.Success(c, 200, "Category retrieved", category)
}

// CreateCategory handles POST /api/category
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req.Name)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to create category")
		return
	}
	utils.Success(c, 201, "Category created", category)
}

// UpdateCategory handles PUT /api/category/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id", "category")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to update category")
		return
	}
	utils.Success(c, 200, "Category updated", category)
}

// DeleteCategory handles DELETE /api/category/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id", "category")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		utils.ErrorFrom(c, err, "Failed to delete category")
		return
	}
	utils.Success(c, 200, "Category removed", gin.H{"id": id})
}
