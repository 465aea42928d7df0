package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/electrokart/electrokart_api/internal/catalog"
	"github.com/electrokart/electrokart_api/internal/matching"
	"github.com/electrokart/electrokart_api/internal/metrics"
	"github.com/electrokart/electrokart_api/internal/models"
)

// VisualSearchErrorMessage is returned with an empty result when the catalog
// could not be queried.
const VisualSearchErrorMessage = "Error processing image. Please try again."

// Upload is an image saved to disk for one search. Filename is the name the
// client sent; Path is where it was stored.
type Upload struct {
	Path     string
	Filename string
	Size     int64
}

// VisualSearchResult is the answer to one visual search.
type VisualSearchResult struct {
	Products   []models.ScoredProduct `json:"products"`
	Message    string                 `json:"message"`
	SearchType string                 `json:"searchType"`
	Strategy   string                 `json:"strategy,omitempty"`
	Analysis   ImageAnalysis          `json:"analysis"`
}

// VisualSearchService finds catalog products resembling an uploaded image.
type VisualSearchService struct {
	products     ProductStore
	kb           *KnowledgeBase
	defaultLimit int
}

// NewVisualSearchService constructs a VisualSearchService.
func NewVisualSearchService(products ProductStore, kb *KnowledgeBase, defaultLimit int) *VisualSearchService {
	return &VisualSearchService{products: products, kb: kb, defaultLimit: defaultLimit}
}

// Search ranks the catalog against the upload and returns at most limit
// products. The upload file is removed before Search returns, whatever the
// outcome. A catalog failure yields an empty result with an error message.
func (s *VisualSearchService) Search(ctx context.Context, up Upload, limit int) *VisualSearchResult {
	defer removeUpload(up.Path)

	if limit <= 0 {
		limit = s.defaultLimit
	}
	analysis := AnalyzeImage(up.Filename, up.Size)
	result := &VisualSearchResult{
		Products:   []models.ScoredProduct{},
		SearchType: "visual",
		Analysis:   analysis,
	}

	products, err := s.products.Find(ctx, catalog.Query{Filter: catalog.All, Order: catalog.OrderTopRated})
	if err != nil {
		log.Error().Err(err).Str("filename", up.Filename).Msg("Failed to load catalog for visual search")
		result.Message = VisualSearchErrorMessage
		return result
	}

	mc := models.MatchContext{Brand: analysis.Brand, Category: analysis.Category, Query: up.Filename}
	strategy, ranked := matching.RunLadder(matching.PrepareCandidates(products, mc, analysis.Signals()))
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked != nil {
		result.Products = ranked
	}
	result.Strategy = strategy
	result.Message = fmt.Sprintf("Found %d similar products", len(result.Products))
	metrics.VisualSearchStrategies.WithLabelValues(strategy).Inc()

	log.Info().
		Str("filename", up.Filename).
		Str("brand", analysis.Brand).
		Str("category", analysis.Category).
		Str("strategy", strategy).
		Int("results", len(result.Products)).
		Msg("Visual search completed")
	return result
}

// UpdateFeatures recomputes the cached feature entry of one product.
func (s *VisualSearchService) UpdateFeatures(ctx context.Context, productID int) (KnowledgeEntry, error) {
	_, existed := s.kb.Entry(productID)
	e, err := s.kb.UpdateProduct(ctx, productID)
	if err != nil {
		return KnowledgeEntry{}, err
	}
	log.Info().Int("product_id", productID).Bool("existed", existed).Msg("Product features updated")
	return e, nil
}

// Suggestions returns the fixed hints of the visual search page.
func (s *VisualSearchService) Suggestions() []string {
	return append([]string(nil), matching.VisualSuggestions...)
}

func removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("Failed to remove visual search upload")
	}
}
