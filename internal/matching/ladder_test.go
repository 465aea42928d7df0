package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electrokart/electrokart_api/internal/models"
)

func storefront() []models.Product {
	return []models.Product{
		newProduct(1, "Pavilion 15 Gaming Laptop", "HP", "Laptops", 75000, 4.5, 10),
		newProduct(2, "Inspiron 14", "Dell", "Laptops", 65000, 4.8, 30),
		newProduct(3, "HP Wireless Mouse", "HP", "Accessories", 900, 4.1, 5),
		newProduct(4, "Galaxy S24", "Samsung", "Smartphones", 70000, 4.6, 40),
		newProduct(5, "Envy x360", "HP", "Laptops", 90000, 4.2, 8),
		newProduct(6, "ThinkPad E14", "Lenovo", "Laptops", 68000, 4.4, 12),
	}
}

func TestPrepareCandidates_StrictCategory(t *testing.T) {
	mc := models.MatchContext{Brand: "hp", Category: "Laptops"}
	c := PrepareCandidates(storefront(), mc, nil)

	for _, sp := range c.Ranked {
		assert.Equal(t, "Laptops", sp.CategoryName())
	}
	for _, p := range c.Pool {
		assert.Equal(t, "Laptops", p.CategoryName())
	}
	assert.Len(t, c.Ranked, 4)
}

func TestPrepareCandidates_RelaxesWhenCategoryMissing(t *testing.T) {
	products := append(storefront(), newProduct(7, "USB Cable", "Generic", "", 100, 3, 1))
	c := PrepareCandidates(products, models.MatchContext{Category: "Cameras"}, nil)

	require.Len(t, c.Ranked, 1)
	assert.Equal(t, 7, c.Ranked[0].ID)
	assert.Len(t, c.Pool, len(products))
}

func TestPrepareCandidates_NeverEmptyWhenCatalogIsNot(t *testing.T) {
	c := PrepareCandidates(storefront(), models.MatchContext{Category: "Cameras"}, nil)
	assert.Len(t, c.Ranked, len(storefront()))
}

func TestRunLadder_HPLaptopUpload(t *testing.T) {
	sig := &ImageSignals{Filename: "hp-pavilion-laptop.png", ProductType: TypeElectronics, Confidence: 0.8, HighQuality: true}
	mc := models.MatchContext{Brand: "hp", Category: "Laptops"}

	strategy, results := RunLadder(PrepareCandidates(storefront(), mc, sig))

	assert.Equal(t, "brand_or_category", strategy)
	assert.Equal(t, []int{1, 5, 2, 6}, scoredIDs(results))
	for i, sp := range results {
		assert.Equal(t, "Laptops", sp.CategoryName())
		if i < 2 {
			assert.Equal(t, models.TierExactBrandCategory, sp.MatchTier)
		} else {
			assert.Equal(t, models.TierSameCategory, sp.MatchTier)
		}
	}
}

func TestRunLadder_ExactImageWins(t *testing.T) {
	products := storefront()
	products[3].Image = "/uploads/galaxy-s24.png"
	sig := &ImageSignals{Filename: "galaxy-s24.png", ProductType: TypeElectronics, Confidence: 0.8}

	strategy, results := RunLadder(PrepareCandidates(products, models.MatchContext{Brand: "samsung", Category: "Smartphones"}, sig))

	assert.Equal(t, "exact", strategy)
	require.Len(t, results, 1)
	assert.Equal(t, 4, results[0].ID)
}

func TestBrandOnly(t *testing.T) {
	c := PrepareCandidates(storefront(), models.MatchContext{Brand: "samsung"}, nil)
	strategy, results := RunLadder(c)

	assert.Equal(t, "brand", strategy)
	require.Len(t, results, 1)
	assert.Equal(t, models.TierSameBrand, results[0].MatchTier)
	assert.Equal(t, 0.9, results[0].Similarity)

	withCategory := c
	withCategory.Context.Category = "Smartphones"
	assert.Nil(t, brandOnly(withCategory))
}

func TestBrandOnly_SkippedWhenCategoryDetected(t *testing.T) {
	c := PrepareCandidates(storefront(), models.MatchContext{Brand: "hp", Category: "Laptops"}, nil)
	assert.Nil(t, brandOnly(c))

	results := brandOrCategory(c)
	assert.Equal(t, []int{1, 5, 2, 6}, scoredIDs(results))
}

func TestBrandDefaultCategory(t *testing.T) {
	var products []models.Product
	for _, p := range storefront() {
		if p.Brand != "Lenovo" {
			products = append(products, p)
		}
	}
	c := PrepareCandidates(products, models.MatchContext{Brand: "lenovo"}, nil)
	assert.Nil(t, brandOnly(c))
	assert.Nil(t, brandOrCategory(c))

	strategy, results := RunLadder(c)
	assert.Equal(t, "brand_default_category", strategy)
	assert.Equal(t, []int{1, 2, 5}, scoredIDs(results))
	for _, sp := range results {
		assert.Equal(t, models.TierSameCategory, sp.MatchTier)
		assert.Equal(t, 0.85, sp.Similarity)
	}
}

func TestKeywordInference_IPhone(t *testing.T) {
	products := []models.Product{
		newProduct(1, "Apple iPhone 15", "Apple", "Smartphones", 80000, 4.9, 100),
		newProduct(2, "Galaxy S24", "Samsung", "Smartphones", 70000, 4.6, 40),
		newProduct(3, "Pavilion 15", "HP", "Laptops", 75000, 4.5, 10),
	}
	c := PrepareCandidates(products, models.MatchContext{}, nil)

	results := keywordInference(c)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].ID)
	assert.Equal(t, models.TierExactBrandCategory, results[0].MatchTier)
	assert.Equal(t, 0.95, results[0].Similarity)
	assert.Equal(t, models.TierSameCategory, results[1].MatchTier)
	assert.Equal(t, 0.8, results[1].Similarity)
}

func TestKeywordInference_IPhoneInDescription(t *testing.T) {
	products := []models.Product{
		newProduct(1, "Pro Max 256GB", "Apple Inc", "Smartphones", 120000, 4.9, 100),
		newProduct(2, "Galaxy S24", "Samsung", "Smartphones", 70000, 4.6, 40),
		newProduct(3, "MacBook Air", "Apple Inc", "Laptops", 110000, 4.8, 60),
		newProduct(4, "Latitude notebook", "Dell", "Laptops", 70000, 4.1, 9),
	}
	products[0].Description = "The latest iPhone with a titanium frame"

	results := keywordInference(PrepareCandidates(products, models.MatchContext{}, nil))
	assert.Equal(t, []int{1, 2}, scoredIDs(results))
	for _, sp := range results {
		assert.Equal(t, "Smartphones", sp.CategoryName())
	}
}

func TestKeywordInference_MostFrequentHint(t *testing.T) {
	products := []models.Product{
		newProduct(1, "Nitro gaming laptop", "Acer", "Laptops", 60000, 4.9, 100),
		newProduct(2, "Swift notebook", "Acer", "Laptops", 55000, 4.6, 40),
		newProduct(3, "Wireless mouse", "Logi", "Accessories", 900, 4.5, 10),
	}
	c := PrepareCandidates(products, models.MatchContext{}, nil)

	results := keywordInference(c)
	assert.Equal(t, []int{1, 2}, scoredIDs(results))
	assert.Equal(t, models.TierExactBrandCategory, results[0].MatchTier)
}

func TestKeywordInference_NoHints(t *testing.T) {
	products := []models.Product{newProduct(1, "Mystery box", "Acme", "Misc", 10, 3, 1)}
	assert.Nil(t, keywordInference(PrepareCandidates(products, models.MatchContext{}, nil)))
}

func TestMajorityInference(t *testing.T) {
	ranked := func(categories ...string) []models.ScoredProduct {
		var out []models.ScoredProduct
		for i, c := range categories {
			out = append(out, models.ScoredProduct{Product: newProduct(i+1, "Item", "Acme", c, 10, 4, 1)})
		}
		return out
	}

	pool := []models.Product{
		newProduct(10, "Book", "Acme", "Books", 10, 4, 1),
		newProduct(11, "Novel", "Other", "Books", 10, 4, 1),
		newProduct(12, "Kettle", "Acme", "Home", 10, 4, 1),
	}

	results := majorityInference(Candidates{Ranked: ranked("Books", "Books", "Books", "Home", "Home"), Pool: pool})
	assert.Equal(t, []int{10, 11}, scoredIDs(results))
	assert.Equal(t, models.TierExactBrandCategory, results[0].MatchTier)
	assert.Equal(t, models.TierSameCategory, results[1].MatchTier)

	assert.Nil(t, majorityInference(Candidates{Ranked: ranked("Books", "Books", "Home", "Toys", "Garden"), Pool: pool}))

	pool = append(pool, newProduct(13, "Comic", "Acme", "Comic Books", 10, 4, 1))
	results = majorityInference(Candidates{Ranked: ranked("Books", "Books", "Books"), Pool: pool})
	assert.Equal(t, []int{10, 11}, scoredIDs(results))
}

func TestTopMatchPeers(t *testing.T) {
	ranked := []models.ScoredProduct{
		{Product: newProduct(1, "Pavilion", "HP", "Laptops", 1, 4, 1)},
		{Product: newProduct(2, "Inspiron", "Dell", "Laptops", 1, 4, 1)},
		{Product: newProduct(3, "Galaxy", "Samsung", "Smartphones", 1, 4, 1)},
	}
	pool := []models.Product{ranked[0].Product, newProduct(5, "Envy", "HP", "Laptops", 1, 4, 1), newProduct(6, "Mouse", "HP", "Accessories", 1, 4, 1)}

	results := topMatchPeers(Candidates{Ranked: ranked, Pool: pool})
	assert.Equal(t, []int{1, 5}, scoredIDs(results))
	assert.Equal(t, models.TierSameBrandCategory, results[1].MatchTier)

	ranked[1].Category = &models.CategoryRef{Name: "Tablets"}
	assert.Nil(t, topMatchPeers(Candidates{Ranked: ranked, Pool: pool}))
}

func TestRunLadder_GeneralFallback(t *testing.T) {
	products := []models.Product{
		newProduct(1, "Mystery box", "", "", 10, 3, 1),
		newProduct(2, "Gift card", "", "", 10, 5, 1),
	}
	strategy, results := RunLadder(PrepareCandidates(products, models.MatchContext{}, nil))

	assert.Equal(t, "general", strategy)
	assert.Len(t, results, 2)
}

func TestMostCommon(t *testing.T) {
	v, n := mostCommon([]string{"a", "b", "b", "a", "c"})
	assert.Equal(t, "b", v)
	assert.Equal(t, 2, n)

	v, n = mostCommon([]string{"a", "c", "b", "c", "a"})
	assert.Equal(t, "c", v)
	assert.Equal(t, 2, n)

	v, n = mostCommon(nil)
	assert.Empty(t, v)
	assert.Zero(t, n)
}
