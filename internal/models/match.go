package models

import (
	"math"
	"time"
)

// PriceKind is the shape of a price constraint extracted from a query.
type PriceKind string

const (
	PriceAtMost        PriceKind = "max"
	PriceAtLeast       PriceKind = "min"
	PriceBetween       PriceKind = "range"
	PriceApproximately PriceKind = "approximate"
)

// PriceConstraint bounds product prices. Value is the only bound for
// max/min/approximate; Between uses Value as the lower and Upper as the upper bound.
type PriceConstraint struct {
	Kind  PriceKind `json:"type"`
	Value float64   `json:"value"`
	Upper float64   `json:"upper,omitempty"`
}

// Range returns the inclusive price interval the constraint accepts.
// Open ends are infinite. An unknown kind yields an empty interval.
func (c PriceConstraint) Range() (lo, hi float64) {
	switch c.Kind {
	case PriceAtMost:
		return math.Inf(-1), c.Value
	case PriceAtLeast:
		return c.Value, math.Inf(1)
	case PriceBetween:
		return c.Value, c.Upper
	case PriceApproximately:
		tolerance := c.Value * 0.2
		return c.Value - tolerance, c.Value + tolerance
	}
	return math.Inf(1), math.Inf(-1)
}

// Accepts reports whether price falls inside the constraint.
func (c PriceConstraint) Accepts(price float64) bool {
	lo, hi := c.Range()
	return price >= lo && price <= hi
}

// MatchContext is what a request tells the scoring engine about the wanted product.
// Empty Brand or Category means "not detected".
type MatchContext struct {
	Brand    string
	Category string
	Query    string
	Price    *PriceConstraint
}

// MatchTier labels why a product was considered relevant.
type MatchTier string

const (
	TierExact              MatchTier = "exact"
	TierExactBrandCategory MatchTier = "exact_brand_category"
	TierSameCategory       MatchTier = "same_category"
	TierSameBrandCategory  MatchTier = "same_brand_category"
	TierSameBrand          MatchTier = "same_brand"
	TierSimilar            MatchTier = "similar"
	TierWrongCategory      MatchTier = "wrong_category"
)

// Rank orders tiers; higher sorts first.
func (t MatchTier) Rank() int {
	switch t {
	case TierExact:
		return 6
	case TierExactBrandCategory:
		return 5
	case TierSameCategory:
		return 4
	case TierSameBrandCategory:
		return 3
	case TierSameBrand:
		return 2
	case TierSimilar:
		return 1
	case TierWrongCategory:
		return -1
	}
	return 0
}

// ScoredProduct is a product annotated with how well it matched a request.
// Visual search fills Similarity, MatchTier and Confidence; chat fills RelevanceScore.
type ScoredProduct struct {
	Product
	Similarity     float64   `json:"similarity,omitempty"`
	MatchTier      MatchTier `json:"matchType,omitempty"`
	Confidence     int       `json:"confidence,omitempty"`
	RelevanceScore float64   `json:"relevanceScore,omitempty"`
}

// ConversationEntry is one chat turn kept in memory for the process lifetime.
type ConversationEntry struct {
	UserID      string          `json:"userId"`
	UserMessage string          `json:"userMessage"`
	BotResponse string          `json:"botResponse"`
	Products    []ScoredProduct `json:"products"`
	Timestamp   time.Time       `json:"timestamp"`
}
