package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/service"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// ProductHandler handles catalog, review and admin product endpoints.
type ProductHandler struct {
	productService *service.ProductService
	userService    *service.UserService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService, userService *service.UserService) *ProductHandler {
	return &ProductHandler{productService: productService, userService: userService}
}

// GetProducts returns a page of products matching ?keyword.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	page := queryInt(c, "page", 1)

	result, err := h.productService.List(c.Request.Context(), c.Query("keyword"), page)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get products")
		return
	}

	utils.SuccessWithPagination(c, 200, "Products retrieved successfully", gin.H{
		"products": result.Products,
	}, result.Page, service.ProductPageSize, result.Total)
}

// GetAllProducts handles GET /api/products/allproducts
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	products, err := h.productService.All(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get products")
		return
	}
	utils.Success(c, 200, "Products retrieved successfully", products)
}

// GetTopProducts handles GET /api/products/top
func (h *ProductHandler) GetTopProducts(c *gin.Context) {
	products, err := h.productService.Top(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get top products")
		return
	}
	utils.Success(c, 200, "Top products retrieved", products)
}

// GetNewProducts handles GET /api/products/new
func (h *ProductHandler) GetNewProducts(c *gin.Context) {
	products, err := h.productService.New(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get new products")
		return
	}
	utils.Success(c, 200, "New products retrieved", products)
}

// SearchProducts handles GET /api/products/search?q=
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "Search query is required")
		return
	}

	products, err := h.productService.Search(c.Request.Context(), q)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to search products")
		return
	}
	utils.Success(c, 200, "Search completed", gin.H{"products": products, "query": q, "count": len(products)})
}

// FilterProducts handles POST /api/products/filtered-products.
// checked holds category ids and radio an optional [min, max] price range.
func (h *ProductHandler) FilterProducts(c *gin.Context) {
	var req struct {
		Checked []int     `json:"checked"`
		Radio   []float64 `json:"radio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	products, err := h.productService.Filtered(c.Request.Context(), req.Checked, req.Radio)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to filter products")
		return
	}
	utils.Success(c, 200, "Products filtered", products)
}

// GetProduct handles GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to get product")
		return
	}
	utils.Success(c, 200, "Product retrieved", product)
}

// GetRelatedProducts handles GET /api/products/:id/related?limit=
func (h *ProductHandler) GetRelatedProducts(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	products, err := h.productService.Related(c.Request.Context(), id, queryInt(c, "limit", service.RelatedProductLimit))
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to get related products")
		return
	}
	utils.Success(c, 200, "Related products retrieved", products)
}

// AddReview handles POST /api/products/:id/reviews
func (h *ProductHandler) AddReview(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	user, err := h.userService.Profile(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to add review")
		return
	}

	review := &models.Review{
		ProductID: id,
		UserID:    userID,
		Name:      user.Username,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.productService.AddReview(c.Request.Context(), review); err != nil {
		utils.ErrorFrom(c, err, "Failed to add review")
		return
	}
	utils.Success(c, 201, "Review added", review)
}

type productRequest struct {
	Name         string  `json:"name"`
	Brand        string  `json:"brand"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Category     int     `json:"category"`
	CountInStock int     `json:"countInStock"`
	Image        string  `json:"image"`
}

func (r productRequest) toModel(id int) *models.Product {
	p := &models.Product{
		ID:           id,
		Name:         r.Name,
		Brand:        r.Brand,
		Description:  r.Description,
		Price:        r.Price,
		CountInStock: r.CountInStock,
		Image:        r.Image,
	}
	if r.Category > 0 {
		p.Category = &models.CategoryRef{ID: r.Category}
	}
	return p
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product := req.toModel(0)
	if err := h.productService.Create(c.Request.Context(), product); err != nil {
		utils.ErrorFrom(c, err, "Failed to create product")
		return
	}
	utils.Success(c, 201, "Product created successfully", product)
}

// UpdateProduct handles PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product := req.toModel(id)
	if err := h.productService.Update(c.Request.Context(), product); err != nil {
		utils.ErrorFrom(c, err, "Failed to update product")
		return
	}
	utils.Success(c, 200, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		utils.ErrorFrom(c, err, "Failed to delete product")
		return
	}
	utils.Success(c, 200, "Product deleted successfully", gin.H{"id": id})
}
