package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt builders render one instruction block per task. Optional fields
// that are absent are omitted entirely, never rendered as empty
// placeholders. The bare-JSON instruction on the numeric tasks is a
// contract with the model, not something code can enforce; the parser
// re-validates everything.

func marshalSpecs(specs map[string]any) string {
	if len(specs) == 0 {
		return ""
	}
	blob, err := json.Marshal(specs)
	if err != nil {
		return ""
	}
	return string(blob)
}

func buildDescriptionPrompt(req DescriptionRequest) string {
	var b strings.Builder
	b.WriteString("You are a marketplace listing expert. Generate a compelling, honest product description.\n\n")
	fmt.Fprintf(&b, "Product: %s\n", req.Title)
	fmt.Fprintf(&b, "Category: %s\n", req.Category)
	if req.Condition != "" {
		fmt.Fprintf(&b, "Condition: %s\n", req.Condition)
	}
	if specs := marshalSpecs(req.Specs); specs != "" {
		fmt.Fprintf(&b, "Specs: %s\n", specs)
	}
	b.WriteString("\nGenerate a 2-3 sentence description that:\n")
	b.WriteString("- Highlights key features and condition\n")
	b.WriteString("- Is honest and realistic (not overly promotional)\n")
	b.WriteString("- Appeals to buyers looking for deals\n")
	b.WriteString("- Mentions what's included if applicable\n\n")
	b.WriteString("Description:")
	return b.String()
}

func buildPriceSuggestionPrompt(req PriceSuggestionRequest) string {
	var b strings.Builder
	b.WriteString("You are a pricing expert for a marketplace in Qatar (currency: QAR).\n\n")
	fmt.Fprintf(&b, "Product: %s\n", req.Title)
	fmt.Fprintf(&b, "Category: %s\n", req.Category)
	fmt.Fprintf(&b, "Condition: %s\n", req.Condition)
	if req.OriginalPrice > 0 {
		fmt.Fprintf(&b, "Original Price: %d QAR\n", req.OriginalPrice)
	}
	if specs := marshalSpecs(req.Specs); specs != "" {
		fmt.Fprintf(&b, "Specs: %s\n", specs)
	}
	b.WriteString("\nAnalyze the market and provide pricing recommendations in QAR. Consider:\n")
	b.WriteString("- Qatar market prices\n")
	b.WriteString("- Product condition\n")
	b.WriteString("- Category demand\n")
	b.WriteString("- Competitive pricing for quick sale\n\n")
	b.WriteString("Respond with ONLY a JSON object (no markdown, no extra text):\n")
	b.WriteString(`{"min": <number>, "max": <number>, "recommended": <number>}`)
	return b.String()
}

func buildDealScorePrompt(req ScoreRequest) string {
	var b strings.Builder
	b.WriteString("You are a deal analysis expert for a marketplace.\n\n")
	fmt.Fprintf(&b, "Listing Price: %d QAR\n", req.Price)
	fmt.Fprintf(&b, "Market Price: %d QAR\n", req.MarketPrice)
	fmt.Fprintf(&b, "Category: %s\n", req.Category)
	fmt.Fprintf(&b, "Condition: %s\n", req.Condition)
	if req.SellerReputation != nil {
		fmt.Fprintf(&b, "Seller Reputation (0-100): %d\n", *req.SellerReputation)
	}
	b.WriteString("\nAnalyze this deal and provide:\n")
	b.WriteString("1. Deal Score (0-100): How good is this deal for buyers?\n")
	b.WriteString("2. Risk Score (0-100): How risky is this purchase?\n")
	b.WriteString("3. 2-3 specific reasons for your scores\n\n")
	b.WriteString("Respond with ONLY a JSON object (no markdown):\n")
	b.WriteString(`{"dealScore": <number>, "riskScore": <number>, "reasons": ["reason1", "reason2"]}`)
	return b.String()
}

// buildReplyDraftMessages returns the system text plus the ordered chat
// turns for the seller-reply task. History precedes the buyer's latest
// message so the model sees the thread the way the seller does.
func buildReplyDraftMessages(req ReplyDraftRequest) (string, []ChatTurn) {
	system := "You are an AI assistant helping a seller respond to buyer inquiries on a marketplace platform in Qatar. " +
		"Be professional, friendly, and helpful. Keep responses concise (1-2 sentences)."
	if req.ListingContext != "" {
		system += "\n\nListing Context: " + req.ListingContext
	}

	turns := make([]ChatTurn, 0, len(req.ConversationHistory)+1)
	turns = append(turns, req.ConversationHistory...)
	turns = append(turns, ChatTurn{
		Role:    "user",
		Content: fmt.Sprintf("Draft a helpful seller response to this buyer message: %q", req.Message),
	})
	return system, turns
}

func buildRewritePrompt(description string, style RewriteStyle) string {
	instruction := "Make this more concise while keeping key information"
	switch style {
	case StyleProfessional:
		instruction = "Rewrite this in a more professional, business-like tone"
	case StyleCasual:
		instruction = "Rewrite this in a more casual, friendly tone"
	}
	return fmt.Sprintf("%s:\n\n%s\n\nRewritten version:", instruction, description)
}
