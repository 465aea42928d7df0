package matching

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/electrokart/electrokart_api/internal/models"
)

// DetectIntent returns the first intent in IntentTable with at least one
// trigger in message. Confidence is hits over the trigger count of that
// intent. Declaration order decides, never confidence.
func DetectIntent(message string) (Intent, float64) {
	lower := strings.ToLower(message)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	for _, entry := range IntentTable {
		hits := 0
		for _, phrase := range entry.Phrases {
			if strings.Contains(lower, phrase) {
				hits++
			}
		}
		for _, w := range entry.Words {
			if words[w] {
				hits++
			}
		}
		if hits > 0 {
			return entry.Intent, float64(hits) / float64(len(entry.Phrases)+len(entry.Words))
		}
	}
	return IntentGeneral, 0
}

type pricePattern struct {
	re        *regexp.Regexp
	interpret func(values []float64) models.PriceConstraint
}

// pricePatterns are tried in order against the lowercased message; the first match wins.
var pricePatterns = []pricePattern{
	{
		re: regexp.MustCompile(`under (\d+)`),
		interpret: func(v []float64) models.PriceConstraint {
			return models.PriceConstraint{Kind: models.PriceAtMost, Value: v[0]}
		},
	},
	{
		re: regexp.MustCompile(`above (\d+)`),
		interpret: func(v []float64) models.PriceConstraint {
			return models.PriceConstraint{Kind: models.PriceAtLeast, Value: v[0]}
		},
	},
	{
		re: regexp.MustCompile(`between (\d+) and (\d+)`),
		interpret: func(v []float64) models.PriceConstraint {
			return models.PriceConstraint{Kind: models.PriceBetween, Value: v[0], Upper: v[1]}
		},
	},
	{
		re: regexp.MustCompile(`around (\d+)`),
		interpret: func(v []float64) models.PriceConstraint {
			return models.PriceConstraint{Kind: models.PriceApproximately, Value: v[0]}
		},
	},
}

// ExtractPrice returns the price constraint stated in message, or nil.
func ExtractPrice(message string) *models.PriceConstraint {
	lower := strings.ToLower(message)
	for _, p := range pricePatterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		values := make([]float64, 0, len(m)-1)
		for _, raw := range m[1:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				break
			}
			values = append(values, v)
		}
		if len(values) != len(m)-1 {
			continue
		}
		c := p.interpret(values)
		return &c
	}
	return nil
}

// ExtractCategories returns the chat category keywords mentioned in message.
func ExtractCategories(message string) []string {
	lower := strings.ToLower(message)
	var out []string
	for _, kw := range ChatCategoryKeywords {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// ExtractFeatures tags a product description with FeatureRules.
func ExtractFeatures(description string) []string {
	lower := strings.ToLower(description)
	var out []string
	for _, rule := range FeatureRules {
		for _, term := range rule.Terms {
			if strings.Contains(lower, term) {
				out = append(out, rule.Feature)
				break
			}
		}
	}
	return out
}
