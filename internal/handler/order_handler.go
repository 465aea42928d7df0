package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/electrokart/electrokart_api/internal/middleware"
	"github.com/electrokart/electrokart_api/internal/service"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// OrderHandler handles checkout and order administration endpoints.
type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.PlaceOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		if len(req.Items) == 0 {
			utils.ErrorFrom(c, utils.ErrEmptyOrder, "")
			return
		}
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), userID, req)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to create order")
		return
	}
	utils.Success(c, 201, "Order created", order)
}

// GetMyOrders handles GET /api/orders/mine
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.Mine(c.Request.Context(), userID)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve orders")
		return
	}
	utils.Success(c, 200, "Orders retrieved", orders)
}

// GetOrder handles GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id", "order")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id, userID, middleware.IsAdmin(c))
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to retrieve order")
		return
	}
	utils.Success(c, 200, "Order retrieved", order)
}

// MarkPaid handles PUT /api/orders/:id/pay
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	id, ok := paramID(c, "id", "order")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	order, err := h.orderService.MarkPaid(c.Request.Context(), id, userID, middleware.IsAdmin(c))
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to update order")
		return
	}
	utils.Success(c, 200, "Order paid", order)
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.List(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve orders")
		return
	}
	utils.Success(c, 200, "Orders retrieved", orders)
}

// MarkDelivered handles PUT /api/orders/:id/deliver
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	id, ok := paramID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to update order")
		return
	}
	utils.Success(c, 200, "Order delivered", order)
}

// CountTotalOrders handles GET /api/orders/total-orders
func (h *OrderHandler) CountTotalOrders(c *gin.Context) {
	n, err := h.orderService.CountTotal(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to count orders")
		return
	}
	utils.Success(c, 200, "Total orders", gin.H{"totalOrders": n})
}

// TotalSales handles GET /api/orders/total-sales
func (h *OrderHandler) TotalSales(c *gin.Context) {
	total, err := h.orderService.TotalSales(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to compute sales")
		return
	}
	utils.Success(c, 200, "Total sales", gin.H{"totalSales": total})
}
