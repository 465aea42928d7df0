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

// CategoryRepository handles data access for categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.SelectContext(ctx, &categories, `
        SELECT id, name, created_at, updated_at
        FROM categories
        ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetByID returns a category, or utils.ErrCategoryNotFound.
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	err := r.db.GetContext(ctx, &c, `
        SELECT id, name, created_at, updated_at
        FROM categories
        WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &c, nil
}

// Create inserts a category. Names are unique.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO categories (name)
        VALUES ($1)
        RETURNING id, created_at, updated_at`, c.Name).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return utils.ErrCategoryExists
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update renames a category.
func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	err := r.db.QueryRowxContext(ctx, `
        UPDATE categories
        SET name = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING created_at, updated_at`, c.Name, c.ID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return utils.ErrCategoryNotFound
	case isUniqueViolation(err):
		return utils.ErrCategoryExists
	case err != nil:
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return nil
}

// Delete removes a category. Its products become uncategorized.
func (r *CategoryRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return expectAffected(res, utils.ErrCategoryNotFound)
}

// EnsureNames inserts any missing categories and returns how many were created.
func (r *CategoryRepository) EnsureNames(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		res, err := r.db.ExecContext(ctx, `
            INSERT INTO categories (name)
            VALUES ($1)
            ON CONFLICT (name) DO NOTHING`, name)
		if err != nil {
			return created, fmt.Errorf("ensure category %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}
	return created, nil
}
