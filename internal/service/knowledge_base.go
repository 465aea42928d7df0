package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electrokart/electrokart_api/internal/catalog"
	"github.com/electrokart/electrokart_api/internal/matching"
	"github.com/electrokart/electrokart_api/internal/metrics"
	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// ProductStore is the catalog read access the chat and visual search need.
type ProductStore interface {
	Find(ctx context.Context, q catalog.Query) ([]models.Product, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
}

// KnowledgeEntry is the lowercased view of a product used for entity
// extraction and as the visual search feature record.
type KnowledgeEntry struct {
	ProductID   int      `json:"productId"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Keywords    []string `json:"keywords"`
}

// KnowledgeBase is the in-memory product snapshot. It is built by Refresh and
// otherwise only changes through UpdateProduct, Upsert and Remove.
type KnowledgeBase struct {
	products ProductStore

	mu        sync.RWMutex
	entries   map[int]KnowledgeEntry
	refreshed time.Time
}

// NewKnowledgeBase creates an empty KnowledgeBase.
func NewKnowledgeBase(products ProductStore) *KnowledgeBase {
	return &KnowledgeBase{products: products, entries: make(map[int]KnowledgeEntry)}
}

// NewKnowledgeEntry derives the entry of p.
func NewKnowledgeEntry(p models.Product) KnowledgeEntry {
	e := KnowledgeEntry{
		ProductID:   p.ID,
		Name:        strings.ToLower(p.Name),
		Brand:       strings.ToLower(p.Brand),
		Category:    strings.ToLower(p.CategoryName()),
		Price:       p.Price,
		Description: strings.ToLower(p.Description),
		Features:    matching.ExtractFeatures(p.Description),
	}
	seen := make(map[string]bool)
	for _, kw := range append([]string{e.Name, e.Brand, e.Category}, e.Features...) {
		if kw != "" && !seen[kw] {
			seen[kw] = true
			e.Keywords = append(e.Keywords, kw)
		}
	}
	return e
}

// Refresh rebuilds the snapshot from the whole catalog and returns its size.
// On error the previous snapshot is kept.
func (kb *KnowledgeBase) Refresh(ctx context.Context) (int, error) {
	products, err := kb.products.Find(ctx, catalog.Query{Filter: catalog.All})
	if err != nil {
		return 0, fmt.Errorf("load knowledge base: %w", err)
	}
	entries := make(map[int]KnowledgeEntry, len(products))
	for _, p := range products {
		entries[p.ID] = NewKnowledgeEntry(p)
	}

	kb.mu.Lock()
	kb.entries = entries
	kb.refreshed = time.Now()
	kb.mu.Unlock()

	metrics.KnowledgeBaseProducts.Set(float64(len(entries)))
	log.Info().Int("products", len(entries)).Msg("Knowledge base initialized")
	return len(entries), nil
}

// UpdateProduct reloads one product from the catalog. A product that no
// longer exists is dropped and utils.ErrProductNotFound returned.
func (kb *KnowledgeBase) UpdateProduct(ctx context.Context, id int) (KnowledgeEntry, error) {
	p, err := kb.products.GetByID(ctx, id)
	if errors.Is(err, utils.ErrProductNotFound) {
		kb.Remove(id)
		return KnowledgeEntry{}, err
	}
	if err != nil {
		return KnowledgeEntry{}, fmt.Errorf("reload product %d: %w", id, err)
	}
	return kb.Upsert(*p), nil
}

// Upsert stores the entry of p.
func (kb *KnowledgeBase) Upsert(p models.Product) KnowledgeEntry {
	e := NewKnowledgeEntry(p)
	kb.mu.Lock()
	kb.entries[p.ID] = e
	n := len(kb.entries)
	kb.mu.Unlock()
	metrics.KnowledgeBaseProducts.Set(float64(n))
	return e
}

// Remove drops a product.
func (kb *KnowledgeBase) Remove(id int) {
	kb.mu.Lock()
	delete(kb.entries, id)
	n := len(kb.entries)
	kb.mu.Unlock()
	metrics.KnowledgeBaseProducts.Set(float64(n))
}

// Entry returns the entry of a product.
func (kb *KnowledgeBase) Entry(id int) (KnowledgeEntry, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	e, ok := kb.entries[id]
	return e, ok
}

// Len returns the number of products held.
func (kb *KnowledgeBase) Len() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.entries)
}

// RefreshedAt returns when the last full refresh completed.
func (kb *KnowledgeBase) RefreshedAt() time.Time {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.refreshed
}

// Mentions returns the ids of products whose name or brand occurs in query,
// in id order. Empty names and brands never match.
func (kb *KnowledgeBase) Mentions(query string) []int {
	lower := strings.ToLower(query)
	kb.mu.RLock()
	var ids []int
	for id, e := range kb.entries {
		if (e.Name != "" && strings.Contains(lower, e.Name)) ||
			(e.Brand != "" && strings.Contains(lower, e.Brand)) {
			ids = append(ids, id)
		}
	}
	kb.mu.RUnlock()
	sort.Ints(ids)
	return ids
}
