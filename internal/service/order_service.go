package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// Checkout pricing.
const (
	taxRate               = 0.15
	freeShippingThreshold = 100.0
	flatShippingPrice     = 10.0
)

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id int) (*models.Order, error)
	ListByUser(ctx context.Context, userID int) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	MarkPaid(ctx context.Context, id int, at time.Time) error
	MarkDelivered(ctx context.Context, id int, at time.Time) error
	CountOrders(ctx context.Context) (int, error)
	TotalSales(ctx context.Context) (float64, error)
}

// OrderLine is a requested product and quantity.
type OrderLine struct {
	ProductID int `json:"product" binding:"required"`
	Qty       int `json:"qty" binding:"required,min=1"`
}

// PlaceOrder is a checkout request. Prices always come from the catalog.
type PlaceOrder struct {
	Items           []OrderLine            `json:"orderItems" binding:"required,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
}

// Prices is the breakdown of an order total.
type Prices struct {
	Items    float64
	Tax      float64
	Shipping float64
	Total    float64
}

// CalcPrices applies tax and shipping to the items subtotal, rounding each
// amount to cents.
func CalcPrices(itemsPrice float64) Prices {
	p := Prices{Items: round2(itemsPrice)}
	if p.Items <= freeShippingThreshold {
		p.Shipping = flatShippingPrice
	}
	p.Tax = round2(p.Items * taxRate)
	p.Total = round2(p.Items + p.Tax + p.Shipping)
	return p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// OrderService handles checkout and order administration.
type OrderService struct {
	orders   OrderRepository
	products ProductStore
	now      func() time.Time
}

func NewOrderService(orders OrderRepository, products ProductStore) *OrderService {
	return &OrderService{orders: orders, products: products, now: time.Now}
}

// Create prices the requested lines from the catalog and stores the order.
// Stock is checked but not reserved.
func (s *OrderService) Create(ctx context.Context, userID int, req PlaceOrder) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, utils.ErrEmptyOrder
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, utils.Invalid("Payment method is required")
	}

	order := &models.Order{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	}
	subtotal := 0.0
	for _, line := range req.Items {
		if line.Qty < 1 {
			return nil, utils.Invalid("Quantity must be at least 1")
		}
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p.CountInStock < line.Qty {
			return nil, utils.ErrInsufficientStock
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       line.Qty,
			Price:     p.Price,
			Image:     p.Image,
		})
		subtotal += p.Price * float64(line.Qty)
	}

	prices := CalcPrices(subtotal)
	order.ItemsPrice, order.TaxPrice, order.ShippingPrice, order.TotalPrice = prices.Items, prices.Tax, prices.Shipping, prices.Total

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	log.Info().Int("order_id", order.ID).Int("user_id", userID).Float64("total", order.TotalPrice).Msg("Order created")
	return order, nil
}

// Get returns an order visible to the requester: its owner or an admin.
func (s *OrderService) Get(ctx context.Context, id, userID int, isAdmin bool) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, utils.ErrForbidden
	}
	return o, nil
}

func (s *OrderService) Mine(ctx context.Context, userID int) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx)
}

// MarkPaid records a manual payment confirmation by the owner or an admin.
func (s *OrderService) MarkPaid(ctx context.Context, id, userID int, isAdmin bool) (*models.Order, error) {
	if _, err := s.Get(ctx, id, userID, isAdmin); err != nil {
		return nil, err
	}
	if err := s.orders.MarkPaid(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) MarkDelivered(ctx context.Context, id int) (*models.Order, error) {
	if err := s.orders.MarkDelivered(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) CountTotal(ctx context.Context) (int, error) {
	return s.orders.CountOrders(ctx)
}

func (s *OrderService) TotalSales(ctx context.Context) (float64, error) {
	return s.orders.TotalSales(ctx)
}
