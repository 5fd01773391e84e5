package ai

import (
	"strings"
	"testing"
)

func TestDescriptionPromptOmitsAbsentFields(t *testing.T) {
	prompt := buildDescriptionPrompt(DescriptionRequest{Title: "PS5", Category: "Gaming"})
	if strings.Contains(prompt, "Condition:") {
		t.Fatalf("absent condition must be omitted, not rendered empty:\n%s", prompt)
	}
	if strings.Contains(prompt, "Specs:") {
		t.Fatalf("absent specs must be omitted:\n%s", prompt)
	}

	withAll := buildDescriptionPrompt(DescriptionRequest{
		Title:     "PS5",
		Category:  "Gaming",
		Condition: ConditionLikeNew,
		Specs:     map[string]any{"storage": "825GB"},
	})
	if !strings.Contains(withAll, "Condition: Like New") {
		t.Fatalf("condition missing:\n%s", withAll)
	}
	if !strings.Contains(withAll, `"storage":"825GB"`) {
		t.Fatalf("specs JSON missing:\n%s", withAll)
	}
}

func TestPriceSuggestionPromptDemandsBareJSON(t *testing.T) {
	prompt := buildPriceSuggestionPrompt(PriceSuggestionRequest{Title: "Desk", Category: "Furniture", Condition: ConditionGood})
	if !strings.Contains(prompt, `{"min": <number>, "max": <number>, "recommended": <number>}`) {
		t.Fatalf("literal JSON shape missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "ONLY a JSON object") {
		t.Fatalf("bare-JSON instruction missing:\n%s", prompt)
	}
	if strings.Contains(prompt, "Original Price:") {
		t.Fatalf("absent original price must be omitted:\n%s", prompt)
	}

	withPrice := buildPriceSuggestionPrompt(PriceSuggestionRequest{Title: "Desk", Category: "Furniture", Condition: ConditionGood, OriginalPrice: 750})
	if !strings.Contains(withPrice, "Original Price: 750 QAR") {
		t.Fatalf("original price missing:\n%s", withPrice)
	}
}

func TestDealScorePromptIncludesReputationOnlyWhenSet(t *testing.T) {
	base := buildDealScorePrompt(ScoreRequest{Price: 500, MarketPrice: 1000, Category: "Electronics", Condition: ConditionGood})
	if strings.Contains(base, "Seller Reputation") {
		t.Fatalf("absent reputation must be omitted:\n%s", base)
	}
	rep := 72
	withRep := buildDealScorePrompt(ScoreRequest{Price: 500, MarketPrice: 1000, Category: "Electronics", Condition: ConditionGood, SellerReputation: &rep})
	if !strings.Contains(withRep, "Seller Reputation (0-100): 72") {
		t.Fatalf("reputation missing:\n%s", withRep)
	}
	if !strings.Contains(withRep, `{"dealScore": <number>, "riskScore": <number>, "reasons": ["reason1", "reason2"]}`) {
		t.Fatalf("literal JSON shape missing:\n%s", withRep)
	}
}

func TestRewritePromptPerStyle(t *testing.T) {
	cases := []struct {
		style RewriteStyle
		want  string
	}{
		{StyleProfessional, "professional"},
		{StyleCasual, "casual"},
		{StyleShorter, "concise"},
	}
	for _, tc := range cases {
		prompt := buildRewritePrompt("some text", tc.style)
		if !strings.Contains(prompt, tc.want) {
			t.Errorf("style %q prompt missing %q:\n%s", tc.style, tc.want, prompt)
		}
		if !strings.Contains(prompt, "some text") {
			t.Errorf("style %q prompt missing the original text", tc.style)
		}
	}
}

func TestReplyDraftSystemOmitsAbsentContext(t *testing.T) {
	system, _ := buildReplyDraftMessages(ReplyDraftRequest{Message: "hi"})
	if strings.Contains(system, "Listing Context") {
		t.Fatalf("absent context must be omitted:\n%s", system)
	}
}
