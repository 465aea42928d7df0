package catalog

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electrokart/electrokart_api/internal/models"
)

func product(id int, name, brand, category string, price float64) models.Product {
	p := models.Product{ID: id, Name: name, Brand: brand, Price: price, Description: name + " by " + brand}
	if category != "" {
		p.Category = &models.CategoryRef{ID: id * 10, Name: category}
	}
	return p
}

func ids(products []models.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

var fixture = []models.Product{
	product(1, "iPad Air", "Apple", "Electronics", 60000),
	product(2, "Leather iPadCase", "Kavaj", "Accessories", 3000),
	product(3, "Pavilion 15", "HP", "Laptops", 75000),
	product(4, "Galaxy S24", "Samsung", "Smartphones", 70000),
	product(5, "Loose Cable", "Generic", "", 100),
}

// ==========================
// Builders
// ==========================

func TestBuildKeywordFilter_SubstringSemantics(t *testing.T) {
	got := Apply(BuildKeywordFilter([]string{"ipad"}), fixture)
	assert.Equal(t, []int{1, 2}, ids(got))
}

func TestBuildKeywordFilter_EmptyTermsMatchNothing(t *testing.T) {
	assert.Equal(t, None, BuildKeywordFilter(nil))
	assert.Equal(t, None, BuildKeywordFilter([]string{"", "  "}))
	assert.Empty(t, Apply(BuildKeywordFilter(nil), fixture))
}

func TestBuildCategoryFilter(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  []int
	}{
		{name: "case insensitive", names: []string{"laptops"}, want: []int{3}},
		{name: "any of", names: []string{"Smartphones", "ACCESSORIES"}, want: []int{2, 4}},
		{name: "empty set", names: nil, want: []int{}},
		{name: "uncategorized never matches", names: []string{""}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(BuildCategoryFilter(tt.names), fixture)))
		})
	}
}

func TestBuildPriceFilter(t *testing.T) {
	tests := []struct {
		name       string
		constraint models.PriceConstraint
		want       []int
	}{
		{name: "at most", constraint: models.PriceConstraint{Kind: models.PriceAtMost, Value: 70000}, want: []int{1, 2, 4, 5}},
		{name: "at least", constraint: models.PriceConstraint{Kind: models.PriceAtLeast, Value: 70000}, want: []int{3, 4}},
		{name: "between inclusive", constraint: models.PriceConstraint{Kind: models.PriceBetween, Value: 3000, Upper: 60000}, want: []int{1, 2}},
		{name: "between inverted is empty", constraint: models.PriceConstraint{Kind: models.PriceBetween, Value: 80000, Upper: 100}, want: []int{}},
		{name: "approximately", constraint: models.PriceConstraint{Kind: models.PriceApproximately, Value: 70000}, want: []int{1, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(BuildPriceFilter(tt.constraint), fixture)))
		})
	}
}

func TestApproximatelyBounds(t *testing.T) {
	f := BuildPriceFilter(models.PriceConstraint{Kind: models.PriceApproximately, Value: 1000})

	assert.True(t, Match(f, models.Product{Price: 800}))
	assert.True(t, Match(f, models.Product{Price: 1200}))
	assert.False(t, Match(f, models.Product{Price: 1210}))
	assert.False(t, Match(f, models.Product{Price: 790}))
}

func TestBetweenInvertedIsNone(t *testing.T) {
	assert.Equal(t, None, BuildPriceFilter(models.PriceConstraint{Kind: models.PriceBetween, Value: 10, Upper: 5}))
}

func TestComposition(t *testing.T) {
	categoryAndPrice := AllOf(
		BuildCategoryFilter([]string{"Smartphones", "Laptops"}),
		BuildPriceFilter(models.PriceConstraint{Kind: models.PriceAtMost, Value: 72000}),
	)
	assert.Equal(t, []int{4}, ids(Apply(categoryAndPrice, fixture)))

	synonyms := AnyOf(BuildKeywordFilter([]string{"galaxy"}), BuildKeywordFilter([]string{"pavilion"}))
	assert.Equal(t, []int{3, 4}, ids(Apply(synonyms, fixture)))

	assert.Equal(t, None, AllOf(All, None, BuildKeywordFilter([]string{"x"})))
	assert.Equal(t, All, AllOf())
	assert.Equal(t, None, AnyOf())
	assert.Equal(t, All, AnyOf(None, All))
}

func TestQueryRun(t *testing.T) {
	now := time.Now()
	products := []models.Product{
		{ID: 1, Rating: 4.5, NumReviews: 10, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, Rating: 4.5, NumReviews: 30, CreatedAt: now},
		{ID: 3, Rating: 5, NumReviews: 1, CreatedAt: now.Add(-2 * time.Hour)},
	}

	assert.Equal(t, []int{3, 2, 1}, ids(Query{Order: OrderTopRated}.Run(products)))
	assert.Equal(t, []int{2, 1}, ids(Query{Order: OrderNewest, Limit: 2}.Run(products)))
	assert.Equal(t, []int{2, 3}, ids(Query{Order: OrderDefault, Offset: 1}.Run(products)))
	assert.Empty(t, Query{Offset: 5}.Run(products))
}

// ==========================
// SQL compilation
// ==========================

func TestCompiler_Where(t *testing.T) {
	c := NewCompiler()
	where := c.Where(AllOf(
		BuildCategoryFilter([]string{"Laptops"}),
		BuildKeywordFilter([]string{"50%_off"}),
		BuildPriceFilter(models.PriceConstraint{Kind: models.PriceAtMost, Value: 80000}),
	))

	assert.Equal(t,
		"(LOWER(c.name) = ANY($1) AND (p.name ILIKE $2 OR p.brand ILIKE $2 OR p.description ILIKE $2) AND (p.price <= $3))",
		where,
	)
	require.Len(t, c.Args(), 3)
	assert.Equal(t, pq.Array([]string{"laptops"}), c.Args()[0])
	assert.Equal(t, `%50\%\_off%`, c.Args()[1])
	assert.Equal(t, float64(80000), c.Args()[2])
}

func TestCompiler_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
		args   int
	}{
		{name: "none", filter: None, want: "FALSE"},
		{name: "all", filter: All, want: "TRUE"},
		{name: "empty or", filter: Or{}, want: "FALSE"},
		{name: "empty and", filter: And{}, want: "TRUE"},
		{name: "inverted range", filter: PriceBetween{Min: 5, Max: 1}, want: "FALSE"},
		{name: "between", filter: BuildPriceFilter(models.PriceConstraint{Kind: models.PriceBetween, Value: 1, Upper: 5}), want: "(p.price >= $1 AND p.price <= $2)", args: 2},
		{name: "ids", filter: IDIn{IDs: []int{1, 2}}, want: "p.id = ANY($1)", args: 1},
		{name: "category ids", filter: CategoryIDIn{IDs: []int{4}}, want: "p.category_id = ANY($1)", args: 1},
		{name: "empty ids", filter: IDIn{}, want: "FALSE"},
		{name: "category field", filter: Contains{Fields: []Field{FieldName, FieldCategory}, Terms: []string{"lap"}}, want: "(p.name ILIKE $1 OR c.name ILIKE $1)", args: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompiler()
			assert.Equal(t, tt.want, c.Where(tt.filter))
			assert.Len(t, c.Args(), tt.args)
		})
	}
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "p.rating DESC, p.num_reviews DESC, p.id ASC", OrderBy(OrderTopRated))
	assert.Equal(t, "p.created_at DESC, p.id DESC", OrderBy(OrderNewest))
	assert.Equal(t, "p.id ASC", OrderBy(OrderDefault))
}
