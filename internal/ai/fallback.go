package ai

import (
	"fmt"
	"math"
	"strings"
)

// The estimator is the last line of defense: every function here is pure,
// total, and deterministic. It must never fail, whatever the input.

const defaultOriginalPrice = 1000

var conditionMultipliers = map[Condition]float64{
	ConditionNew:     0.9,
	ConditionLikeNew: 0.7,
	ConditionGood:    0.5,
	ConditionFair:    0.5,
}

func conditionMultiplier(c Condition) float64 {
	if m, ok := conditionMultipliers[c]; ok {
		return m
	}
	return 0.5
}

func fallbackPriceRange(req PriceSuggestionRequest) PriceSuggestionResult {
	base := req.OriginalPrice
	if base <= 0 {
		base = defaultOriginalPrice
	}
	estimated := int(math.Round(float64(base) * conditionMultiplier(req.Condition)))
	return PriceSuggestionResult{
		Min:         int(math.Round(float64(estimated) * 0.85)),
		Max:         int(math.Round(float64(estimated) * 1.15)),
		Recommended: estimated,
		Source:      SourceFallback,
	}
}

func fallbackDealScore(req ScoreRequest) ScoreResult {
	// MarketPrice <= 0 is rejected at the API boundary; saturate to the
	// worst bucket here rather than divide by zero.
	ratio := 2.0
	if req.MarketPrice > 0 {
		ratio = float64(req.Price) / float64(req.MarketPrice)
	}

	dealScore := 40
	switch {
	case ratio < 0.7:
		dealScore = 95
	case ratio < 0.85:
		dealScore = 85
	case ratio < 1.0:
		dealScore = 70
	}

	first := "Fair market price"
	if ratio < 0.9 {
		first = "Price below market average"
	}

	return ScoreResult{
		DealScore: dealScore,
		RiskScore: 15,
		Reasons:   []string{first, "Seller verification needed"},
		Source:    SourceFallback,
	}
}

func fallbackDescription(req DescriptionRequest) DescriptionResult {
	return DescriptionResult{
		Text: fmt.Sprintf(
			"%s for sale in the %s category. Well kept and priced to move; message the seller for details and what's included.",
			strings.TrimSpace(req.Title), strings.TrimSpace(req.Category)),
		Source: SourceFallback,
	}
}

func fallbackReplyDraft(req ReplyDraftRequest) ReplyDraftResult {
	lower := strings.ToLower(req.Message)
	text := "Thanks for your interest! I'm happy to answer any questions you have."
	switch {
	case strings.Contains(lower, "available"):
		text = "Yes, it's still available! Would you like to schedule a viewing?"
	case strings.Contains(lower, "price"):
		text = "The price is slightly negotiable for serious buyers. What's your best offer?"
	}
	return ReplyDraftResult{Text: text, Source: SourceFallback}
}
