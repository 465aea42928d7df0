package models

import "time"

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// OrderItem is a product line captured at order time.
type OrderItem struct {
	ID        int     `db:"id" json:"-"`
	OrderID   int     `db:"order_id" json:"-"`
	ProductID int     `db:"product_id" json:"product"`
	Name      string  `db:"name" json:"name"`
	Qty       int     `db:"qty" json:"qty"`
	Price     float64 `db:"price" json:"price"`
	Image     string  `db:"image" json:"image"`
}

// Order is a checkout record. Prices are computed server-side from the catalog.
type Order struct {
	ID              int             `db:"id" json:"id"`
	UserID          int             `db:"user_id" json:"user"`
	ShippingAddress ShippingAddress `db:"-" json:"shippingAddress"`
	PaymentMethod   string          `db:"payment_method" json:"paymentMethod"`
	ItemsPrice      float64         `db:"items_price" json:"itemsPrice"`
	TaxPrice        float64         `db:"tax_price" json:"taxPrice"`
	ShippingPrice   float64         `db:"shipping_price" json:"shippingPrice"`
	TotalPrice      float64         `db:"total_price" json:"totalPrice"`
	IsPaid          bool            `db:"is_paid" json:"isPaid"`
	PaidAt          *time.Time      `db:"paid_at" json:"paidAt,omitempty"`
	IsDelivered     bool            `db:"is_delivered" json:"isDelivered"`
	DeliveredAt     *time.Time      `db:"delivered_at" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`

	Items []OrderItem `db:"-" json:"orderItems"`
}
