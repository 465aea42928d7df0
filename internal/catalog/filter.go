// Package catalog builds product filters that can be evaluated in memory or
// compiled to PostgreSQL.
package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/electrokart/electrokart_api/internal/models"
)

// Field names a searchable product text field.
type Field string

const (
	FieldName        Field = "name"
	FieldBrand       Field = "brand"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
)

// ProductText are the fields a keyword search scans.
var ProductText = []Field{FieldName, FieldBrand, FieldDescription}

// Filter is a predicate over products.
type Filter interface {
	isFilter()
}

type matchAll struct{}
type matchNone struct{}

var (
	// All matches every product.
	All Filter = matchAll{}
	// None matches no product.
	None Filter = matchNone{}
)

// CategoryIn matches products whose category name equals one of Names, ignoring case.
type CategoryIn struct {
	Names []string
}

// CategoryIDIn matches products in any of the given categories.
type CategoryIDIn struct {
	IDs []int
}

// IDIn matches products by id.
type IDIn struct {
	IDs []int
}

// Contains matches products where any of Fields contains any of Terms as a
// case-insensitive substring.
type Contains struct {
	Fields []Field
	Terms  []string
}

// PriceBetween matches Min <= price <= Max. Either bound may be infinite.
type PriceBetween struct {
	Min float64
	Max float64
}

// And matches when every member matches. An empty And matches everything.
type And []Filter

// Or matches when any member matches. An empty Or matches nothing.
type Or []Filter

func (matchAll) isFilter()     {}
func (matchNone) isFilter()    {}
func (CategoryIn) isFilter()   {}
func (CategoryIDIn) isFilter() {}
func (IDIn) isFilter()         {}
func (Contains) isFilter()     {}
func (PriceBetween) isFilter() {}
func (And) isFilter()          {}
func (Or) isFilter()           {}

// BuildCategoryFilter matches products whose category name is any of names.
// No names means no matches.
func BuildCategoryFilter(names []string) Filter {
	cleaned := nonEmpty(names)
	if len(cleaned) == 0 {
		return None
	}
	return CategoryIn{Names: cleaned}
}

// BuildKeywordFilter matches products whose name, brand or description contains
// any term. Matching is substring based, so "ipad" also matches "ipadcase".
// No terms means no matches.
func BuildKeywordFilter(terms []string) Filter {
	cleaned := nonEmpty(terms)
	if len(cleaned) == 0 {
		return None
	}
	return Contains{Fields: ProductText, Terms: cleaned}
}

// BuildPriceFilter turns a price constraint into a range filter.
// Between with lo > hi matches nothing; bounds are never swapped.
func BuildPriceFilter(c models.PriceConstraint) Filter {
	lo, hi := c.Range()
	if lo > hi {
		return None
	}
	return PriceBetween{Min: lo, Max: hi}
}

// AllOf combines filters with AND, dropping All members and collapsing on None.
func AllOf(filters ...Filter) Filter {
	var out And
	for _, f := range filters {
		switch f.(type) {
		case nil, matchAll:
			continue
		case matchNone:
			return None
		}
		out = append(out, f)
	}
	switch len(out) {
	case 0:
		return All
	case 1:
		return out[0]
	}
	return out
}

// AnyOf combines filters with OR, dropping None members and collapsing on All.
func AnyOf(filters ...Filter) Filter {
	var out Or
	for _, f := range filters {
		switch f.(type) {
		case nil, matchNone:
			continue
		case matchAll:
			return All
		}
		out = append(out, f)
	}
	switch len(out) {
	case 0:
		return None
	case 1:
		return out[0]
	}
	return out
}

// Match evaluates f against p in memory.
func Match(f Filter, p models.Product) bool {
	switch f := f.(type) {
	case nil, matchAll:
		return true
	case matchNone:
		return false
	case CategoryIn:
		name := p.CategoryName()
		if name == "" {
			return false
		}
		for _, n := range f.Names {
			if strings.EqualFold(n, name) {
				return true
			}
		}
		return false
	case CategoryIDIn:
		if p.Category == nil {
			return false
		}
		for _, id := range f.IDs {
			if id == p.Category.ID {
				return true
			}
		}
		return false
	case IDIn:
		for _, id := range f.IDs {
			if id == p.ID {
				return true
			}
		}
		return false
	case Contains:
		for _, field := range f.Fields {
			text := strings.ToLower(fieldValue(p, field))
			for _, term := range f.Terms {
				if strings.Contains(text, strings.ToLower(term)) {
					return true
				}
			}
		}
		return false
	case PriceBetween:
		return p.Price >= f.Min && p.Price <= f.Max
	case And:
		for _, sub := range f {
			if !Match(sub, p) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range f {
			if Match(sub, p) {
				return true
			}
		}
		return false
	}
	return false
}

// Apply returns the products matching f, in their original order.
func Apply(f Filter, products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if Match(f, p) {
			out = append(out, p)
		}
	}
	return out
}

func fieldValue(p models.Product, field Field) string {
	switch field {
	case FieldName:
		return p.Name
	case FieldBrand:
		return p.Brand
	case FieldDescription:
		return p.Description
	case FieldCategory:
		return p.CategoryName()
	}
	return ""
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Order is the sort applied to a catalog query.
type Order int

const (
	// OrderDefault sorts by id.
	OrderDefault Order = iota
	// OrderTopRated sorts by rating then review count, both descending.
	OrderTopRated
	// OrderNewest sorts by creation time, newest first.
	OrderNewest
)

// Query is a filtered, ordered, optionally limited catalog read.
type Query struct {
	Filter Filter
	Order  Order
	Limit  int
	Offset int
}

// Run evaluates q over an in-memory product slice.
func (q Query) Run(products []models.Product) []models.Product {
	out := Apply(q.Filter, products)
	SortProducts(out, q.Order)
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []models.Product{}
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// SortProducts orders products in place.
func SortProducts(products []models.Product, order Order) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch order {
		case OrderTopRated:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.NumReviews > b.NumReviews
		case OrderNewest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
