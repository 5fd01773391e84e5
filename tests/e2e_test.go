//go:build integration

package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nmansoor/souq/internal/ai"
	"github.com/nmansoor/souq/internal/httpapi"
	"github.com/nmansoor/souq/internal/store"
)

// scriptedCompleter answers by prompt content so one fake serves every
// AI task in a single end-to-end run.
type scriptedCompleter struct{}

func (scriptedCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	switch {
	case strings.Contains(req.System+flatten(req.Turns), "dealScore"):
		return `{"dealScore": 88, "riskScore": 10, "reasons": ["priced below market", "popular category"]}`, nil
	case strings.Contains(req.System+flatten(req.Turns), "recommended"):
		return `{"min": 2000, "max": 2600, "recommended": 2300}`, nil
	case strings.Contains(req.System, "helping a seller"):
		return "", errors.New("reply model unavailable")
	default:
		return "Well-kept iPhone 13 Pro, single owner, original box included.", nil
	}
}

func flatten(turns []ai.ChatTurn) string {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func (c *client) signIn(phone string) {
	c.t.Helper()
	status, body := c.do("POST", "/api/auth/verify-otp", map[string]any{
		"phoneNumber": phone,
		"code":        "1234",
	})
	if status != 200 {
		c.t.Fatalf("verify-otp: status %d body %v", status, body)
	}
	c.token = body["token"].(string)
}

func TestMarketplaceEndToEnd(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "souq.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()

	gateway := ai.NewGateway(scriptedCompleter{})
	srv := httptest.NewServer(httpapi.NewServer(st, gateway, true))
	defer srv.Close()

	seller := &client{t: t, base: srv.URL}
	seller.signIn("+97455501234")
	buyer := &client{t: t, base: srv.URL}
	buyer.signIn("+97455509999")

	// Seller drafts a listing with AI assistance.
	status, body := seller.do("POST", "/api/ai/generate-description", map[string]any{
		"title": "iPhone 13 Pro", "category": "Electronics", "condition": "Like New",
	})
	if status != 200 || body["source"] != "ai" {
		t.Fatalf("generate-description: status %d body %v", status, body)
	}
	description := body["description"].(string)

	status, body = seller.do("POST", "/api/ai/suggest-price", map[string]any{
		"title": "iPhone 13 Pro", "category": "Electronics",
		"condition": "Like New", "originalPrice": 4200,
	})
	if status != 200 {
		t.Fatalf("suggest-price: status %d", status)
	}
	suggestion := body["suggestion"].(map[string]any)
	if suggestion["source"] != "ai" || suggestion["recommended"].(float64) != 2300 {
		t.Fatalf("suggestion = %v", suggestion)
	}

	status, body = seller.do("POST", "/api/listings", map[string]any{
		"title":       "iPhone 13 Pro",
		"description": description,
		"category":    "Electronics",
		"condition":   "Like New",
		"price":       int(suggestion["recommended"].(float64)),
		"location":    "Doha",
	})
	if status != 201 {
		t.Fatalf("create listing: status %d body %v", status, body)
	}
	listingID := body["listing"].(map[string]any)["id"].(string)

	// Buyer checks the deal.
	status, body = buyer.do("POST", "/api/ai/score-deal", map[string]any{
		"price": 2300, "marketPrice": 2600, "category": "Electronics", "condition": "Like New",
	})
	if status != 200 {
		t.Fatalf("score-deal: status %d", status)
	}
	score := body["score"].(map[string]any)
	if score["source"] != "ai" || score["dealScore"].(float64) != 88 {
		t.Fatalf("score = %v", score)
	}

	// Buyer opens a conversation; the reply model is down, so the AI agent
	// answers with the deterministic draft.
	status, body = buyer.do("POST", "/api/conversations", map[string]any{
		"listingId": listingID, "aiAgentActive": true,
	})
	if status != 201 {
		t.Fatalf("create conversation: status %d body %v", status, body)
	}
	convID := body["conversation"].(map[string]any)["id"].(string)

	status, body = buyer.do("POST", fmt.Sprintf("/api/conversations/%s/messages", convID), map[string]any{
		"content": "What is your best price?",
	})
	if status != 201 {
		t.Fatalf("send message: status %d body %v", status, body)
	}
	auto, ok := body["autoReply"].(map[string]any)
	if !ok {
		t.Fatalf("expected autoReply, got %v", body)
	}
	if auto["isAiGenerated"] != true || !strings.Contains(auto["content"].(string), "negotiable") {
		t.Fatalf("autoReply = %v", auto)
	}

	// Buyer saves the listing; the counter survives a duplicate save.
	for i := 0; i < 2; i++ {
		status, _ = buyer.do("POST", "/api/saved-listings", map[string]any{"listingId": listingID})
		if status != 201 {
			t.Fatalf("save listing: status %d", status)
		}
	}
	status, body = buyer.do("GET", "/api/listings/"+listingID, nil)
	if status != 200 {
		t.Fatalf("detail: status %d", status)
	}
	listing := body["listing"].(map[string]any)
	if listing["saves"].(float64) != 1 {
		t.Fatalf("saves = %v, want 1", listing["saves"])
	}

	// Seller marks the item sold; it drops out of browse results.
	status, _ = seller.do("PATCH", "/api/listings/"+listingID, map[string]any{"status": "sold"})
	if status != 200 {
		t.Fatalf("mark sold: status %d", status)
	}
	status, body = buyer.do("GET", "/api/listings", nil)
	if status != 200 {
		t.Fatalf("browse: status %d", status)
	}
	if got := len(body["listings"].([]any)); got != 0 {
		t.Fatalf("browse after sold: %d listings, want 0", got)
	}
}
