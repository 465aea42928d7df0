package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

const orderColumns = `
        SELECT id, user_id, shipping_address, shipping_city, shipping_postal_code,
               shipping_country, payment_method, items_price, tax_price, shipping_price,
               total_price, is_paid, paid_at, is_delivered, delivered_at, created_at
        FROM orders`

// orderRow flattens the shipping address into columns.
type orderRow struct {
	ID                 int          `db:"id"`
	UserID             int          `db:"user_id"`
	ShippingAddress    string       `db:"shipping_address"`
	ShippingCity       string       `db:"shipping_city"`
	ShippingPostalCode string       `db:"shipping_postal_code"`
	ShippingCountry    string       `db:"shipping_country"`
	PaymentMethod      string       `db:"payment_method"`
	ItemsPrice         float64      `db:"items_price"`
	TaxPrice           float64      `db:"tax_price"`
	ShippingPrice      float64      `db:"shipping_price"`
	TotalPrice         float64      `db:"total_price"`
	IsPaid             bool         `db:"is_paid"`
	PaidAt             sql.NullTime `db:"paid_at"`
	IsDelivered        bool         `db:"is_delivered"`
	DeliveredAt        sql.NullTime `db:"delivered_at"`
	CreatedAt          time.Time    `db:"created_at"`
}

func (r orderRow) toModel() models.Order {
	o := models.Order{
		ID:     r.ID,
		UserID: r.UserID,
		ShippingAddress: models.ShippingAddress{
			Address:    r.ShippingAddress,
			City:       r.ShippingCity,
			PostalCode: r.ShippingPostalCode,
			Country:    r.ShippingCountry,
		},
		PaymentMethod: r.PaymentMethod,
		ItemsPrice:    r.ItemsPrice,
		TaxPrice:      r.TaxPrice,
		ShippingPrice: r.ShippingPrice,
		TotalPrice:    r.TotalPrice,
		IsPaid:        r.IsPaid,
		IsDelivered:   r.IsDelivered,
		CreatedAt:     r.CreatedAt,
		Items:         []models.OrderItem{},
	}
	if r.PaidAt.Valid {
		t := r.PaidAt.Time
		o.PaidAt = &t
	}
	if r.DeliveredAt.Valid {
		t := r.DeliveredAt.Time
		o.DeliveredAt = &t
	}
	return o
}

// OrderRepository handles data access for orders and their items.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order with its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = tx.QueryRowxContext(ctx, `
        INSERT INTO orders (user_id, shipping_address, shipping_city, shipping_postal_code,
                            shipping_country, payment_method, items_price, tax_price,
                            shipping_price, total_price)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at`,
		o.UserID, o.ShippingAddress.Address, o.ShippingAddress.City, o.ShippingAddress.PostalCode,
		o.ShippingAddress.Country, o.PaymentMethod, o.ItemsPrice, o.TaxPrice,
		o.ShippingPrice, o.TotalPrice).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err = tx.QueryRowxContext(ctx, `
            INSERT INTO order_items (order_id, product_id, name, qty, price, image)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id`,
			item.OrderID, item.ProductID, item.Name, item.Qty, item.Price, item.Image).
			Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

// GetByID returns an order with its items, or utils.ErrOrderNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, orderColumns+` WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	orders, err := r.withItems(ctx, []orderRow{row})
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int) ([]models.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, orderColumns+` WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID); err != nil {
		return nil, fmt.Errorf("list orders of user %d: %w", userID, err)
	}
	return r.withItems(ctx, rows)
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, orderColumns+` ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return r.withItems(ctx, rows)
}

// withItems loads the items of all rows with a single query.
func (r *OrderRepository) withItems(ctx context.Context, rows []orderRow) ([]models.Order, error) {
	orders := make([]models.Order, len(rows))
	if len(rows) == 0 {
		return orders, nil
	}
	ids := make([]int64, len(rows))
	index := make(map[int]int, len(rows))
	for i, row := range rows {
		orders[i] = row.toModel()
		ids[i] = int64(row.ID)
		index[row.ID] = i
	}

	var items []models.OrderItem
	err := r.db.SelectContext(ctx, &items, `
        SELECT id, order_id, product_id, name, qty, price, image
        FROM order_items
        WHERE order_id = ANY($1)
        ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	for _, item := range items {
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, nil
}

// MarkPaid flags an order as paid at the given time.
func (r *OrderRepository) MarkPaid(ctx context.Context, id int, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET is_paid = TRUE, paid_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark order %d paid: %w", id, err)
	}
	return expectAffected(res, utils.ErrOrderNotFound)
}

// MarkDelivered flags an order as delivered at the given time.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id int, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET is_delivered = TRUE, delivered_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark order %d delivered: %w", id, err)
	}
	return expectAffected(res, utils.ErrOrderNotFound)
}

// CountOrders returns the number of orders.
func (r *OrderRepository) CountOrders(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM orders`); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// TotalSales returns the sum of all order totals.
func (r *OrderRepository) TotalSales(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(total_price), 0) FROM orders`); err != nil {
		return 0, fmt.Errorf("sum sales: %w", err)
	}
	return total, nil
}

// CoPurchased returns ids of products bought in the same paid orders as
// productID, most frequent first.
func (r *OrderRepository) CoPurchased(ctx context.Context, productID, limit int) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `
        SELECT peer.product_id
        FROM order_items item
        JOIN orders o ON o.id = item.order_id AND o.is_paid
        JOIN order_items peer ON peer.order_id = item.order_id AND peer.product_id <> item.product_id
        WHERE item.product_id = $1
        GROUP BY peer.product_id
        ORDER BY COUNT(*) DESC, peer.product_id
        LIMIT $2`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("co-purchased products of %d: %w", productID, err)
	}
	return ids, nil
}
