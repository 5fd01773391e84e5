package ai

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strings"
)

// ParseFailure is the typed failure signal for unusable model output.
// The gateway treats every reason the same way: fall back.
type ParseFailure struct {
	Reason string
}

func (e *ParseFailure) Error() string { return "unusable model response: " + e.Reason }

const (
	ReasonNoJSON    = "no JSON found"
	ReasonMalformed = "malformed JSON"
	ReasonSchema    = "schema mismatch"
	ReasonEmpty     = "empty response"
)

// flatObjectRE matches a brace-delimited span with no nested object,
// which is the shape the price prompt demands.
var flatObjectRE = regexp.MustCompile(`\{[^}]+\}`)

// extractJSONSpan returns the outermost brace-delimited span of s. The
// model wraps its JSON in prose often enough that a plain Unmarshal of
// the whole response is useless.
func extractJSONSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func clampScore(v float64) int {
	return int(math.Min(100, math.Max(0, math.Round(v))))
}

func parsePriceSuggestion(raw string) (PriceSuggestionResult, error) {
	span := flatObjectRE.FindString(raw)
	if span == "" {
		return PriceSuggestionResult{}, &ParseFailure{Reason: ReasonNoJSON}
	}

	var body struct {
		Min         *float64 `json:"min"`
		Max         *float64 `json:"max"`
		Recommended *float64 `json:"recommended"`
	}
	if err := json.Unmarshal([]byte(span), &body); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return PriceSuggestionResult{}, &ParseFailure{Reason: ReasonSchema}
		}
		return PriceSuggestionResult{}, &ParseFailure{Reason: ReasonMalformed}
	}
	if body.Min == nil || body.Max == nil || body.Recommended == nil {
		return PriceSuggestionResult{}, &ParseFailure{Reason: ReasonSchema}
	}

	result := PriceSuggestionResult{
		Min:         int(math.Round(*body.Min)),
		Max:         int(math.Round(*body.Max)),
		Recommended: int(math.Round(*body.Recommended)),
		Source:      SourceAI,
	}
	// The model is not trusted to keep its numbers ordered.
	if result.Min > result.Recommended || result.Recommended > result.Max {
		return PriceSuggestionResult{}, &ParseFailure{Reason: ReasonSchema}
	}
	return result, nil
}

func parseDealScore(raw string) (ScoreResult, error) {
	span, ok := extractJSONSpan(raw)
	if !ok {
		return ScoreResult{}, &ParseFailure{Reason: ReasonNoJSON}
	}

	var body struct {
		DealScore *float64        `json:"dealScore"`
		RiskScore *float64        `json:"riskScore"`
		Reasons   json.RawMessage `json:"reasons"`
	}
	if err := json.Unmarshal([]byte(span), &body); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ScoreResult{}, &ParseFailure{Reason: ReasonSchema}
		}
		return ScoreResult{}, &ParseFailure{Reason: ReasonMalformed}
	}
	if body.DealScore == nil || body.RiskScore == nil {
		return ScoreResult{}, &ParseFailure{Reason: ReasonSchema}
	}

	// A wrong-typed reasons field does not sink the whole result.
	var reasons []string
	if len(body.Reasons) > 0 {
		if err := json.Unmarshal(body.Reasons, &reasons); err != nil {
			reasons = nil
		}
	}
	if reasons == nil {
		reasons = []string{}
	}
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}

	return ScoreResult{
		DealScore: clampScore(*body.DealScore),
		RiskScore: clampScore(*body.RiskScore),
		Reasons:   reasons,
		Source:    SourceAI,
	}, nil
}

// parseText handles the prose tasks: the trimmed raw text is the result,
// and only an empty result counts as a failure.
func parseText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &ParseFailure{Reason: ReasonEmpty}
	}
	return text, nil
}
