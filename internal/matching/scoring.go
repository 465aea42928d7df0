package matching

import (
	"math"
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/electrokart/electrokart_api/internal/models"
)

// Weights of the visual similarity terms.
const (
	WeightCategory = 0.6
	WeightBrand    = 0.3
	WeightFilename = 0.15
	WeightImage    = 0.05
)

const (
	minSimilarity       = 0.1
	maxSimilarity       = 1.0
	mismatchFactor      = 0.3
	mismatchFloor       = 0.05
	exactSimilarity     = 0.7
	identityFilename    = 0.8
	highRating          = 4.0
	undetectedBoost     = 0.2
	categoryMismatch    = -0.5
	categoryMissing     = -0.3
	categorySubstring   = 0.8
	brandSubstring      = 0.9
	filenameExact       = 1.0
	filenameStripped    = 0.9
	filenamePartial     = 0.8
	filenameUnrelated   = 0.1
	popularBrandWeight  = 0.8
	regularBrandWeight  = 0.5
	unbrandedWeight     = 0.3
	typeMatchBonus      = 0.4
	highQualityBonus    = 0.3
	confidenceInfluence = 0.3
)

// ImageSignals are what an upload reveals without looking at its pixels.
type ImageSignals struct {
	Filename    string
	ProductType string
	Confidence  float64
	HighQuality bool
}

// CategoryTerm scores how well a product's category fits the detected one.
func CategoryTerm(productCategory, detected string) float64 {
	if detected == "" {
		if productCategory == "" {
			return 0
		}
		return undetectedBoost * CategoryPopularityOf(productCategory)
	}
	if productCategory == "" {
		return categoryMissing
	}
	if productCategory == detected {
		return 1.0
	}
	pc, d := strings.ToLower(productCategory), strings.ToLower(detected)
	if strings.Contains(pc, d) || strings.Contains(d, pc) {
		return categorySubstring
	}
	return categoryMismatch
}

// CategoryPopularityOf returns the fixed popularity weight of a category name.
func CategoryPopularityOf(name string) float64 {
	if w, ok := CategoryPopularity[strings.ToLower(name)]; ok {
		return w
	}
	return defaultCategoryPopularity
}

// BrandTerm scores how well a product's brand fits the detected one.
func BrandTerm(productBrand, detected string) float64 {
	pb := normalizeBrand(productBrand)
	if detected == "" {
		return undetectedBoost * BrandPopularityOf(pb)
	}
	if pb == "" {
		return 0
	}
	d := normalizeBrand(detected)
	if pb == d {
		return 1.0
	}
	if strings.Contains(pb, d) || strings.Contains(d, pb) {
		return brandSubstring
	}
	return 0
}

// BrandPopularityOf returns the fixed popularity weight of a brand.
func BrandPopularityOf(brand string) float64 {
	b := normalizeBrand(brand)
	switch {
	case b == "":
		return unbrandedWeight
	case PopularBrands[b]:
		return popularBrandWeight
	}
	return regularBrandWeight
}

var (
	filenameNoise = regexp.MustCompile(`(?i)[_-]\d+|[_-][a-f0-9]+`)
	imageExt      = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)
)

// StripFilename removes numeric or hex suffixes and the image extension.
func StripFilename(name string) string {
	return imageExt.ReplaceAllString(filenameNoise.ReplaceAllString(name, ""), "")
}

// FilenameTerm compares an upload's filename with a product's stored image path.
func FilenameTerm(uploaded, productImage string) float64 {
	if uploaded == "" || productImage == "" {
		return filenameUnrelated
	}
	up := strings.ToLower(path.Base(uploaded))
	img := strings.ToLower(productImage)
	prod := path.Base(img)
	if up == prod {
		return filenameExact
	}

	upBase, prodBase := StripFilename(up), StripFilename(prod)
	if upBase != "" && prodBase != "" &&
		(upBase == prodBase || strings.Contains(upBase, prodBase) || strings.Contains(prodBase, upBase)) {
		return filenameStripped
	}

	upStem := strings.TrimSuffix(up, path.Ext(up))
	prodStem := strings.TrimSuffix(prod, path.Ext(prod))
	if (upStem != "" && strings.Contains(img, upStem)) || (prodStem != "" && strings.Contains(up, prodStem)) {
		return filenamePartial
	}
	return filenameUnrelated
}

// ImageTerm scores how plausible the product is for the upload's coarse type.
func ImageTerm(sig ImageSignals, p models.Product) float64 {
	score := 0.0
	for _, c := range TypeCategories[sig.ProductType] {
		if c == p.CategoryName() {
			score += typeMatchBonus
			break
		}
	}
	if sig.HighQuality && p.Rating > highRating {
		score += highQualityBonus
	}
	score += sig.Confidence * confidenceInfluence
	return math.Min(score, 1.0)
}

// ScoreVisual scores p for a visual search. sig may be nil when there is no
// upload, in which case the filename and image terms are left out of both the
// sum and the applied weights.
func ScoreVisual(p models.Product, mc models.MatchContext, sig *ImageSignals) models.ScoredProduct {
	category := CategoryTerm(p.CategoryName(), mc.Category)
	brand := BrandTerm(p.Brand, mc.Brand)

	sum := category*WeightCategory + brand*WeightBrand
	weights := WeightCategory + WeightBrand
	filename := 0.0
	if sig != nil {
		filename = FilenameTerm(sig.Filename, p.Image)
		sum += filename*WeightFilename + ImageTerm(*sig, p)*WeightImage
		weights += WeightFilename + WeightImage
	}

	final := sum / weights
	wrongCategory := mc.Category != "" && p.CategoryName() != "" && p.CategoryName() != mc.Category
	if wrongCategory {
		final = math.Max(mismatchFloor, final*mismatchFactor)
	}

	var tier models.MatchTier
	switch {
	case wrongCategory:
		tier = models.TierWrongCategory
	case final >= exactSimilarity && filename >= identityFilename:
		tier = models.TierExact
	case brand == 1.0 && category == 1.0:
		tier = models.TierExactBrandCategory
	case category == 1.0:
		tier = models.TierSameCategory
	case brand == 1.0:
		tier = models.TierSameBrand
	case brand > 0.8 && category > 0.5:
		tier = models.TierSameBrandCategory
	default:
		tier = models.TierSimilar
	}

	return Scored(p, final, tier)
}

// Scored wraps p with a clamped similarity, its tier and the derived confidence.
func Scored(p models.Product, similarity float64, tier models.MatchTier) models.ScoredProduct {
	s := Clamp(similarity)
	return models.ScoredProduct{
		Product:    p,
		Similarity: s,
		MatchTier:  tier,
		Confidence: int(math.Round(s * 100)),
	}
}

// Clamp limits a similarity to [0.1, 1.0].
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return minSimilarity
	}
	return math.Max(minSimilarity, math.Min(maxSimilarity, v))
}

// SortByTier orders by tier rank, then similarity, both descending.
func SortByTier(products []models.ScoredProduct) {
	sort.SliceStable(products, func(i, j int) bool {
		ri, rj := products[i].MatchTier.Rank(), products[j].MatchTier.Rank()
		if ri != rj {
			return ri > rj
		}
		return products[i].Similarity > products[j].Similarity
	})
}

// Chat ranking points.
const (
	ratingPoints     = 20.0
	reviewPoints     = 10.0
	pricePoints      = 30.0
	wordPoints       = 15.0
	minWordLength    = 3
	ChatResultsLimit = 5
)

// ScoreChat returns the additive relevance points of p for a chat query.
// Approximate price constraints never earn the price bonus.
func ScoreChat(p models.Product, query string, price *models.PriceConstraint) float64 {
	score := p.Rating*ratingPoints + math.Log(float64(p.NumReviews)+1)*reviewPoints

	if price != nil && price.Kind != models.PriceApproximately && price.Accepts(p.Price) {
		score += pricePoints
	}

	text := strings.ToLower(p.Name + " " + p.Brand + " " + p.Description)
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(word) >= minWordLength && strings.Contains(text, word) {
			score += wordPoints
		}
	}
	return score
}

// RankChat scores products for a chat query and keeps the best limit.
func RankChat(products []models.Product, query string, price *models.PriceConstraint, limit int) []models.ScoredProduct {
	ranked := make([]models.ScoredProduct, len(products))
	for i, p := range products {
		ranked[i] = models.ScoredProduct{Product: p, RelevanceScore: ScoreChat(p, query, price)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func normalizeBrand(b string) string {
	return strings.ToLower(strings.TrimSpace(b))
}
