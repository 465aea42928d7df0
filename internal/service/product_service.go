package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/electrokart/electrokart_api/internal/cache"
	"github.com/electrokart/electrokart_api/internal/catalog"
	"github.com/electrokart/electrokart_api/internal/matching"
	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// Listing sizes of the storefront.
const (
	ProductPageSize     = 6
	allProductsLimit    = 12
	topProductsLimit    = 4
	newProductsLimit    = 5
	RelatedProductLimit = 8
)

// ProductRepository is the product persistence the catalog needs.
type ProductRepository interface {
	ProductStore
	Count(ctx context.Context, f catalog.Filter) (int, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int) error
}

// ReviewStore persists reviews and keeps product ratings in sync.
type ReviewStore interface {
	ListByProduct(ctx context.Context, productID int) ([]models.Review, error)
	Add(ctx context.Context, review *models.Review) error
}

// CoPurchaseSource reports products bought together.
type CoPurchaseSource interface {
	CoPurchased(ctx context.Context, productID, limit int) ([]int, error)
}

// ProductService provides catalog reads, admin writes and reviews.
type ProductService struct {
	products ProductRepository
	reviews  ReviewStore
	orders   CoPurchaseSource
	cache    *cache.CatalogCache
	kb       *KnowledgeBase
}

// NewProductService constructs a ProductService. cache may be nil.
func NewProductService(products ProductRepository, reviews ReviewStore, orders CoPurchaseSource, catalogCache *cache.CatalogCache, kb *KnowledgeBase) *ProductService {
	return &ProductService{products: products, reviews: reviews, orders: orders, cache: catalogCache, kb: kb}
}

// ProductPage is one page of a keyword listing.
type ProductPage struct {
	Products []models.Product
	Page     int
	Total    int
}

// List returns a page of products whose name, brand or description contains
// keyword. An empty keyword lists everything.
func (s *ProductService) List(ctx context.Context, keyword string, page int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	filter := catalog.All
	if kw := strings.TrimSpace(keyword); kw != "" {
		filter = catalog.BuildKeywordFilter([]string{kw})
	}

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Find(ctx, catalog.Query{
		Filter: filter,
		Limit:  ProductPageSize,
		Offset: (page - 1) * ProductPageSize,
	})
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Page: page, Total: total}, nil
}

// Get returns a product with its reviews.
func (s *ProductService) Get(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Reviews = reviews
	return p, nil
}

// All returns the newest products.
func (s *ProductService) All(ctx context.Context) ([]models.Product, error) {
	return s.cached(ctx, "all", catalog.Query{Filter: catalog.All, Order: catalog.OrderNewest, Limit: allProductsLimit})
}

// Top returns the best rated products.
func (s *ProductService) Top(ctx context.Context) ([]models.Product, error) {
	return s.cached(ctx, "top", catalog.Query{Filter: catalog.All, Order: catalog.OrderTopRated, Limit: topProductsLimit})
}

// New returns the latest additions.
func (s *ProductService) New(ctx context.Context) ([]models.Product, error) {
	return s.cached(ctx, "new", catalog.Query{Filter: catalog.All, Order: catalog.OrderNewest, Limit: newProductsLimit})
}

func (s *ProductService) cached(ctx context.Context, name string, q catalog.Query) ([]models.Product, error) {
	return s.cache.Products(ctx, name, func(ctx context.Context) ([]models.Product, error) {
		return s.products.Find(ctx, q)
	})
}

// Filtered returns products in any of categoryIDs and inside priceRange.
// Empty arguments do not filter; a price range needs exactly two bounds.
func (s *ProductService) Filtered(ctx context.Context, categoryIDs []int, priceRange []float64) ([]models.Product, error) {
	var filters []catalog.Filter
	if len(categoryIDs) > 0 {
		filters = append(filters, catalog.CategoryIDIn{IDs: categoryIDs})
	}
	switch len(priceRange) {
	case 0:
	case 2:
		filters = append(filters, catalog.BuildPriceFilter(models.PriceConstraint{
			Kind: models.PriceBetween, Value: priceRange[0], Upper: priceRange[1],
		}))
	default:
		return nil, utils.Invalid("price range needs a lower and an upper bound")
	}
	return s.products.Find(ctx, catalog.Query{Filter: catalog.AllOf(filters...)})
}

// Search resolves a search box query: storefront category labels first, then
// category names containing the query, then a keyword search widened with
// synonyms. Results are newest first.
func (s *ProductService) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []models.Product{}, nil
	}
	return s.cache.Products(ctx, "search:"+strings.ToLower(keyword), func(ctx context.Context) ([]models.Product, error) {
		for _, f := range searchFilters(keyword) {
			products, err := s.products.Find(ctx, catalog.Query{Filter: f, Order: catalog.OrderNewest})
			if err != nil {
				return nil, err
			}
			if len(products) > 0 {
				return products, nil
			}
		}
		return []models.Product{}, nil
	})
}

// searchFilters returns the filters Search tries in order.
func searchFilters(keyword string) []catalog.Filter {
	var out []catalog.Filter
	if sc, ok := matching.StorefrontCategories[keyword]; ok {
		f := catalog.BuildCategoryFilter(sc.Categories)
		if len(sc.Keywords) > 0 {
			f = catalog.AllOf(f, catalog.Contains{
				Fields: []catalog.Field{catalog.FieldName, catalog.FieldDescription},
				Terms:  sc.Keywords,
			})
		}
		out = append(out, f)
	}
	out = append(out, catalog.Contains{Fields: []catalog.Field{catalog.FieldCategory}, Terms: []string{keyword}})

	lower := strings.ToLower(keyword)
	terms := []string{lower}
	seen := map[string]bool{lower: true}
	for _, syn := range matching.SearchSynonyms {
		if !strings.Contains(lower, syn.Key) {
			continue
		}
		for _, t := range syn.Synonyms {
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}
	return append(out, catalog.BuildKeywordFilter(terms))
}

// Create validates and stores a new product.
func (s *ProductService) Create(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	s.catalogChanged(ctx, p.ID)
	return nil
}

// Update validates and saves a product's editable fields.
func (s *ProductService) Update(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return err
	}
	s.catalogChanged(ctx, p.ID)
	return nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.kb.Remove(id)
	s.invalidate(ctx)
	return nil
}

func validateProduct(p *models.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return utils.Invalid("Name is required")
	case strings.TrimSpace(p.Brand) == "":
		return utils.Invalid("Brand is required")
	case strings.TrimSpace(p.Description) == "":
		return utils.Invalid("Description is required")
	case p.Price <= 0:
		return utils.Invalid("Price is required")
	case p.Category == nil || p.Category.ID <= 0:
		return utils.Invalid("Category is required")
	case p.CountInStock < 0:
		return utils.Invalid("Quantity is required")
	}
	return nil
}

// AddReview records a user's only review of a product. The product's rating
// and review count are recomputed by the store.
func (s *ProductService) AddReview(ctx context.Context, review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return utils.Invalid("Rating must be between 1 and 5")
	}
	if err := s.reviews.Add(ctx, review); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Related returns up to limit products to show next to productID: the same
// category by rating, then products bought together with it, then the best
// rated products overall.
func (s *ProductService) Related(ctx context.Context, productID, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = RelatedProductLimit
	}
	base, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, limit)
	seen := map[int]bool{base.ID: true}
	add := func(products []models.Product) {
		for _, p := range products {
			if len(out) == limit {
				return
			}
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p)
			}
		}
	}

	if base.Category != nil {
		sameCategory, err := s.products.Find(ctx, catalog.Query{
			Filter: catalog.CategoryIDIn{IDs: []int{base.Category.ID}},
			Order:  catalog.OrderTopRated,
			Limit:  limit + 1,
		})
		if err != nil {
			return nil, err
		}
		add(sameCategory)
	}

	if len(out) < limit && s.orders != nil {
		ids, err := s.orders.CoPurchased(ctx, productID, limit*2)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			bought, err := s.products.Find(ctx, catalog.Query{Filter: catalog.IDIn{IDs: ids}})
			if err != nil {
				return nil, err
			}
			add(inIDOrder(bought, ids))
		}
	}

	if len(out) < limit {
		top, err := s.products.Find(ctx, catalog.Query{
			Filter: catalog.All,
			Order:  catalog.OrderTopRated,
			Limit:  limit + len(seen),
		})
		if err != nil {
			return nil, err
		}
		add(top)
	}
	return out, nil
}

// inIDOrder orders products like ids.
func inIDOrder(products []models.Product, ids []int) []models.Product {
	byID := make(map[int]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// catalogChanged drops cached listings and refreshes the product's knowledge
// base entry. Failures are logged; the write itself already succeeded.
func (s *ProductService) catalogChanged(ctx context.Context, productID int) {
	s.invalidate(ctx)
	if _, err := s.kb.UpdateProduct(ctx, productID); err != nil {
		log.Warn().Err(err).Int("product_id", productID).Msg("Failed to refresh knowledge base entry")
	}
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(fmt.Errorf("invalidate catalog cache: %w", err)).Msg("Catalog cache may serve stale listings")
	}
}
