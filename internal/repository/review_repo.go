package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// ReviewRepository handles product reviews and the derived product rating.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListByProduct returns a product's reviews, oldest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.SelectContext(ctx, &reviews, `
        SELECT id, product_id, user_id, name, rating, comment, created_at
        FROM reviews
        WHERE product_id = $1
        ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews of product %d: %w", productID, err)
	}
	return reviews, nil
}

// Add inserts a review and recomputes the product's rating and review count
// in the same transaction. A second review by the same user fails with
// utils.ErrAlreadyReviewed and changes nothing.
func (r *ReviewRepository) Add(ctx context.Context, review *models.Review) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Lock the product row so concurrent reviews serialize on the aggregate.
	var productID int
	err = tx.GetContext(ctx, &productID, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, review.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.ErrProductNotFound
		}
		return fmt.Errorf("lock product %d: %w", review.ProductID, err)
	}

	var exists bool
	err = tx.GetContext(ctx, &exists, `
        SELECT EXISTS(SELECT 1 FROM reviews WHERE product_id = $1 AND user_id = $2)`,
		review.ProductID, review.UserID)
	if err != nil {
		return fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return utils.ErrAlreadyReviewed
	}

	err = tx.QueryRowxContext(ctx, `
        INSERT INTO reviews (product_id, user_id, name, rating, comment)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		review.ProductID, review.UserID, review.Name, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return utils.ErrAlreadyReviewed
		}
		return fmt.Errorf("insert review: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE products
        SET num_reviews = agg.n, rating = agg.avg, updated_at = NOW()
        FROM (
            SELECT COUNT(*) AS n, COALESCE(AVG(rating), 0) AS avg
            FROM reviews
            WHERE product_id = $1
        ) agg
        WHERE products.id = $1`, review.ProductID)
	if err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review: %w", err)
	}
	return nil
}
