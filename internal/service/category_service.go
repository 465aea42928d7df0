package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/electrokart/electrokart_api/internal/cache"
	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// CategoryRepository is the category persistence.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id int) error
}

// CategoryService manages product categories.
type CategoryService struct {
	categories CategoryRepository
	cache      *cache.CatalogCache
	kb         *KnowledgeBase
}

// NewCategoryService constructs a CategoryService. cache may be nil.
func NewCategoryService(categories CategoryRepository, catalogCache *cache.CatalogCache, kb *KnowledgeBase) *CategoryService {
	return &CategoryService{categories: categories, cache: catalogCache, kb: kb}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// Create adds a category. Names are unique.
func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.Invalid("Name is required")
	}
	c := &models.Category{Name: name}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update renames a category. Product listings embed category names, so
// cached listings and the knowledge base are rebuilt.
func (s *CategoryService) Update(ctx context.Context, id int, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.Invalid("Name is required")
	}
	c := &models.Category{ID: id, Name: name}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	s.categoriesChanged(ctx)
	return c, nil
}

// Delete removes a category; its products become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id int) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.categoriesChanged(ctx)
	return nil
}

func (s *CategoryService) categoriesChanged(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate catalog cache")
	}
	if _, err := s.kb.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to refresh knowledge base after category change")
	}
}
