package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/electrokart/electrokart_api/internal/catalog"
	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// productFrom aliases products as p and categories as c, as catalog filters expect.
const productFrom = `
        FROM products p
        LEFT JOIN categories c ON c.id = p.category_id`

const productColumns = `
        SELECT p.id, p.name, p.brand, p.price, p.description, p.category_id,
               c.name AS category_name, p.rating, p.num_reviews, p.count_in_stock,
               p.image, p.created_at, p.updated_at`

// productRow is the flat shape of a product joined with its category.
type productRow struct {
	ID           int            `db:"id"`
	Name         string         `db:"name"`
	Brand        string         `db:"brand"`
	Price        float64        `db:"price"`
	Description  string         `db:"description"`
	CategoryID   sql.NullInt64  `db:"category_id"`
	CategoryName sql.NullString `db:"category_name"`
	Rating       float64        `db:"rating"`
	NumReviews   int            `db:"num_reviews"`
	CountInStock int            `db:"count_in_stock"`
	Image        string         `db:"image"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r productRow) toModel() models.Product {
	p := models.Product{
		ID:           r.ID,
		Name:         r.Name,
		Brand:        r.Brand,
		Price:        r.Price,
		Description:  r.Description,
		Rating:       r.Rating,
		NumReviews:   r.NumReviews,
		CountInStock: r.CountInStock,
		Image:        r.Image,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.CategoryID.Valid {
		p.Category = &models.CategoryRef{ID: int(r.CategoryID.Int64), Name: r.CategoryName.String}
	}
	return p
}

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Find runs a catalog query against the products table.
func (r *ProductRepository) Find(ctx context.Context, q catalog.Query) ([]models.Product, error) {
	cmp := catalog.NewCompiler()
	query := productColumns + productFrom + `
        WHERE ` + cmp.Where(q.Filter) + `
        ORDER BY ` + catalog.OrderBy(q.Order)
	if q.Limit > 0 {
		query += " LIMIT " + cmp.Bind(q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET " + cmp.Bind(q.Offset)
	}

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, cmp.Args()...); err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	products := make([]models.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toModel()
	}
	return products, nil
}

// Count returns how many products match f.
func (r *ProductRepository) Count(ctx context.Context, f catalog.Filter) (int, error) {
	cmp := catalog.NewCompiler()
	query := `SELECT COUNT(1)` + productFrom + `
        WHERE ` + cmp.Where(f)

	var total int
	if err := r.db.GetContext(ctx, &total, query, cmp.Args()...); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// GetByID returns a single product by id, or utils.ErrProductNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	query := productColumns + productFrom + `
        WHERE p.id = $1`

	var row productRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	p := row.toModel()
	return &p, nil
}

// Create inserts a product. Rating and review count start at zero.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	const q = `
        INSERT INTO products (name, brand, price, description, category_id, count_in_stock, image)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, rating, num_reviews, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, q,
		p.Name, p.Brand, p.Price, p.Description, categoryID(p), p.CountInStock, p.Image,
	).Scan(&p.ID, &p.Rating, &p.NumReviews, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return utils.ErrCategoryNotFound
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a product. Rating and review
// count are owned by the review flow and left untouched.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	const q = `
        UPDATE products
        SET name = $1, brand = $2, price = $3, description = $4,
            category_id = $5, count_in_stock = $6, image = $7, updated_at = NOW()
        WHERE id = $8
        RETURNING rating, num_reviews, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, q,
		p.Name, p.Brand, p.Price, p.Description, categoryID(p), p.CountInStock, p.Image, p.ID,
	).Scan(&p.Rating, &p.NumReviews, &p.CreatedAt, &p.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return utils.ErrProductNotFound
	case isForeignKeyViolation(err):
		return utils.ErrCategoryNotFound
	case err != nil:
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return nil
}

// Delete removes a product and, by cascade, its reviews.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return expectAffected(res, utils.ErrProductNotFound)
}

func categoryID(p *models.Product) sql.NullInt64 {
	if p.Category == nil || p.Category.ID == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(p.Category.ID), Valid: true}
}
