package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/electrokart/electrokart_api/internal/models"
)

// Fixed similarities assigned by fallback strategies.
const (
	scoreBrandAndCategory   = 0.95
	scoreBrandOnly          = 0.9
	scoreFilterBrandCat     = 0.9
	scoreFilterBrand        = 0.8
	scoreFilterOther        = 0.75
	scoreDefaultCategory    = 0.85
	scoreInferredCategory   = 0.8
	scoreTopPeer            = 0.85
	inferenceWindow         = 10
	majorityWindow          = 5
	majorityShare           = 0.6
	peerWindow              = 3
	peerMinimum             = 2
	appleIPhoneCategory     = "Smartphones"
	appleBrand              = "apple"
	strategyGeneral         = "general"
	strategyExact           = "exact"
	strategyBrand           = "brand"
	strategyBrandOrCategory = "brand_or_category"
	strategyBrandDefault    = "brand_default_category"
	strategyKeywordInfer    = "keyword_inference"
	strategyMajority        = "majority_inference"
	strategyTopPeers        = "top_match_peers"
)

// Candidates is the input of the fallback ladder.
type Candidates struct {
	Context models.MatchContext
	// Ranked are the scored candidates after the strict category filter, best first.
	Ranked []models.ScoredProduct
	// Pool is what filter strategies draw from, in rating order.
	Pool []models.Product
}

// Strategy is one rung of the ladder. Run returns nil when its precondition
// does not hold or it finds nothing.
type Strategy struct {
	Name string
	Run  func(c Candidates) []models.ScoredProduct
}

// Ladder is evaluated in order until a strategy yields results.
var Ladder = []Strategy{
	{Name: strategyExact, Run: exactMatches},
	{Name: strategyBrand, Run: brandOnly},
	{Name: strategyBrandOrCategory, Run: brandOrCategory},
	{Name: strategyBrandDefault, Run: brandDefaultCategory},
	{Name: strategyKeywordInfer, Run: keywordInference},
	{Name: strategyMajority, Run: majorityInference},
	{Name: strategyTopPeers, Run: topMatchPeers},
}

// PrepareCandidates scores products against mc and applies the strict
// category filter. When a category was detected and the catalog holds
// products of that category, only those survive. Otherwise wrong-category
// products are dropped, unless that leaves nothing.
func PrepareCandidates(products []models.Product, mc models.MatchContext, sig *ImageSignals) Candidates {
	scored := make([]models.ScoredProduct, len(products))
	for i, p := range products {
		scored[i] = ScoreVisual(p, mc, sig)
	}
	SortByTier(scored)

	if mc.Category != "" {
		var strict []models.ScoredProduct
		var pool []models.Product
		for _, sp := range scored {
			if sp.CategoryName() == mc.Category {
				strict = append(strict, sp)
			}
		}
		for _, p := range products {
			if p.CategoryName() == mc.Category {
				pool = append(pool, p)
			}
		}
		if len(strict) > 0 {
			return Candidates{Context: mc, Ranked: strict, Pool: pool}
		}
	}

	var relaxed []models.ScoredProduct
	for _, sp := range scored {
		if sp.MatchTier != models.TierWrongCategory {
			relaxed = append(relaxed, sp)
		}
	}
	if len(relaxed) == 0 {
		relaxed = scored
	}
	return Candidates{Context: mc, Ranked: relaxed, Pool: products}
}

// RunLadder returns the first non-empty strategy result and its name. When
// every strategy comes up empty the ranked candidates are returned as is.
func RunLadder(c Candidates) (string, []models.ScoredProduct) {
	for _, s := range Ladder {
		if out := s.Run(c); len(out) > 0 {
			return s.Name, out
		}
	}
	return strategyGeneral, c.Ranked
}

func exactMatches(c Candidates) []models.ScoredProduct {
	var out []models.ScoredProduct
	for _, sp := range c.Ranked {
		if sp.MatchTier == models.TierExact {
			out = append(out, sp)
		}
	}
	return out
}

// brandOnly applies when the context carries a brand but no category.
func brandOnly(c Candidates) []models.ScoredProduct {
	brand := normalizeBrand(c.Context.Brand)
	if brand == "" || c.Context.Category != "" {
		return nil
	}
	var out []models.ScoredProduct
	for _, p := range c.Pool {
		if normalizeBrand(p.Brand) == brand {
			out = append(out, Scored(p, scoreBrandOnly, models.TierSameBrand))
		}
	}
	return out
}

func brandOrCategory(c Candidates) []models.ScoredProduct {
	if c.Context.Brand == "" && c.Context.Category == "" {
		return nil
	}
	return filterAndScore(c.Pool, c.Context.Brand, c.Context.Category)
}

func brandDefaultCategory(c Candidates) []models.ScoredProduct {
	brand := normalizeBrand(c.Context.Brand)
	if brand == "" || c.Context.Category != "" {
		return nil
	}
	category, ok := BrandDefaultCategory[brand]
	if !ok {
		return nil
	}
	return inCategory(c.Pool, brand, category, scoreDefaultCategory)
}

// keywordInference guesses a category from the wording of the top candidates.
func keywordInference(c Candidates) []models.ScoredProduct {
	top := headScored(c.Ranked, inferenceWindow)
	if len(top) == 0 {
		return nil
	}

	brand, category := "", ""
	for _, sp := range top {
		if isIPhone(sp.Product) {
			brand, category = appleBrand, appleIPhoneCategory
			break
		}
	}

	if category == "" {
		counts := make(map[string]int)
		for _, sp := range top {
			text := strings.ToLower(sp.Name + " " + sp.Description)
			for _, hint := range InferenceHints {
				for _, kw := range hint.Keywords {
					if strings.Contains(text, kw) {
						counts[hint.Category]++
						break
					}
				}
			}
		}
		best := 0
		for _, hint := range InferenceHints {
			if counts[hint.Category] > best {
				best, category = counts[hint.Category], hint.Category
			}
		}
		if category == "" {
			return nil
		}

		var brands []string
		for _, sp := range top {
			if sp.CategoryName() == category {
				brands = append(brands, normalizeBrand(sp.Brand))
			}
		}
		if len(brands) == 0 {
			return nil
		}
		brand, _ = mostCommon(brands)
	}

	if normalizeBrand(c.Context.Brand) == appleBrand {
		category = appleIPhoneCategory
	}
	return inCategory(c.Pool, brand, category, scoreInferredCategory)
}

// majorityInference trusts the top candidates' own category when most agree.
// Only products of exactly that category are returned.
func majorityInference(c Candidates) []models.ScoredProduct {
	top := headScored(c.Ranked, majorityWindow)
	if len(top) == 0 {
		return nil
	}
	var categories, brands []string
	for _, sp := range top {
		if name := sp.CategoryName(); name != "" {
			categories = append(categories, name)
		}
		if b := normalizeBrand(sp.Brand); b != "" {
			brands = append(brands, b)
		}
	}
	category, count := mostCommon(categories)
	if category == "" || count < int(math.Ceil(float64(len(top))*majorityShare)) {
		return nil
	}
	brand, _ := mostCommon(brands)
	var pool []models.Product
	for _, p := range c.Pool {
		if p.CategoryName() == category {
			pool = append(pool, p)
		}
	}
	return filterAndScore(pool, brand, category)
}

// topMatchPeers returns the best candidate with its same brand and category siblings.
func topMatchPeers(c Candidates) []models.ScoredProduct {
	if len(c.Ranked) == 0 {
		return nil
	}
	best := c.Ranked[0]
	brand, category := normalizeBrand(best.Brand), best.CategoryName()
	if brand == "" || category == "" {
		return nil
	}
	same := 0
	for _, sp := range headScored(c.Ranked, peerWindow) {
		if sp.CategoryName() == category {
			same++
		}
	}
	if same < peerMinimum {
		return nil
	}

	out := []models.ScoredProduct{best}
	for _, p := range c.Pool {
		if p.ID == best.ID {
			continue
		}
		if normalizeBrand(p.Brand) == brand && p.CategoryName() == category {
			out = append(out, Scored(p, scoreTopPeer, models.TierSameBrandCategory))
		}
	}
	return out
}

// filterAndScore keeps pool products matching category (exact or substring),
// or brand when no category is given, and scores them by what they share.
func filterAndScore(pool []models.Product, brand, category string) []models.ScoredProduct {
	brand = normalizeBrand(brand)
	var out []models.ScoredProduct
	for _, p := range pool {
		pb, pc := normalizeBrand(p.Brand), p.CategoryName()
		if category != "" {
			if !categoryRelated(pc, category) {
				continue
			}
		} else if pb != brand {
			continue
		}

		brandMatch := brand != "" && pb == brand
		categoryMatch := category != "" && pc == category
		switch {
		case brandMatch && categoryMatch:
			out = append(out, Scored(p, scoreFilterBrandCat, models.TierExactBrandCategory))
		case brandMatch:
			out = append(out, Scored(p, scoreFilterBrand, models.TierSameBrand))
		case categoryMatch:
			out = append(out, Scored(p, scoreFilterOther, models.TierSameCategory))
		default:
			out = append(out, Scored(p, scoreFilterOther, models.TierSameBrandCategory))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := filterPriority(out[i].MatchTier), filterPriority(out[j].MatchTier)
		if pi != pj {
			return pi > pj
		}
		return out[i].Similarity > out[j].Similarity
	})
	return out
}

func filterPriority(t models.MatchTier) int {
	switch t {
	case models.TierExactBrandCategory:
		return 2
	case models.TierSameBrand:
		return 1
	}
	return 0
}

// inCategory returns pool products of exactly category; those also of brand
// rank first as exact brand-and-category matches.
func inCategory(pool []models.Product, brand, category string, otherScore float64) []models.ScoredProduct {
	brand = normalizeBrand(brand)
	var out []models.ScoredProduct
	for _, p := range pool {
		if p.CategoryName() != category {
			continue
		}
		if brand != "" && normalizeBrand(p.Brand) == brand {
			out = append(out, Scored(p, scoreBrandAndCategory, models.TierExactBrandCategory))
		} else {
			out = append(out, Scored(p, otherScore, models.TierSameCategory))
		}
	}
	SortByTier(out)
	return out
}

func categoryRelated(productCategory, category string) bool {
	if productCategory == "" {
		return false
	}
	if productCategory == category {
		return true
	}
	pc, c := strings.ToLower(productCategory), strings.ToLower(category)
	return strings.Contains(pc, c) || strings.Contains(c, pc)
}

func headScored(products []models.ScoredProduct, n int) []models.ScoredProduct {
	if len(products) > n {
		return products[:n]
	}
	return products
}

// isIPhone reports an Apple product that names the iPhone in its name or
// description.
func isIPhone(p models.Product) bool {
	if !strings.Contains(strings.ToLower(p.Brand), appleBrand) {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), "iphone") ||
		strings.Contains(strings.ToLower(p.Description), "iphone")
}

// mostCommon returns the most frequent value. Among tied values the one
// whose first occurrence is latest wins.
func mostCommon(values []string) (string, int) {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] >= bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, bestCount
}
