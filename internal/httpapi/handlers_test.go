package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nmansoor/souq/internal/ai"
	"github.com/nmansoor/souq/internal/store"
)

type stubCompleter struct {
	response string
	err      error
}

func (c *stubCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	return c.response, c.err
}

func newTestHandler(t *testing.T, completer ai.Completer) (http.Handler, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "souq.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewServer(st, ai.NewGateway(completer), true), st
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(blob)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func signIn(t *testing.T, h http.Handler, phone string) string {
	t.Helper()
	rec := doJSON(t, h, "POST", "/api/auth/verify-otp", "", map[string]any{
		"phoneNumber": phone,
		"code":        "1234",
	})
	if rec.Code != 200 {
		t.Fatalf("verify-otp: status %d body %s", rec.Code, rec.Body.String())
	}
	token, _ := decodeBody(t, rec)["token"].(string)
	if token == "" {
		t.Fatal("verify-otp returned no token")
	}
	return token
}

func createListing(t *testing.T, h http.Handler, token string, body map[string]any) string {
	t.Helper()
	if body == nil {
		body = map[string]any{}
	}
	if body["title"] == nil {
		body["title"] = "iPhone 13 Pro"
	}
	if body["category"] == nil {
		body["category"] = "Electronics"
	}
	if body["price"] == nil {
		body["price"] = 2500
	}
	rec := doJSON(t, h, "POST", "/api/listings", token, body)
	if rec.Code != 201 {
		t.Fatalf("create listing: status %d body %s", rec.Code, rec.Body.String())
	}
	listing := decodeBody(t, rec)["listing"].(map[string]any)
	return listing["id"].(string)
}

func TestRequestOTPEchoesCodeInDevMode(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := doJSON(t, h, "POST", "/api/auth/request-otp", "", map[string]any{"phoneNumber": "+97455501234"})
	if rec.Code != 200 {
		t.Fatalf("status %d", rec.Code)
	}
	code, _ := decodeBody(t, rec)["devCode"].(string)
	if len(code) != 4 {
		t.Fatalf("devCode = %q, want 4 digits", code)
	}

	rec = doJSON(t, h, "POST", "/api/auth/verify-otp", "", map[string]any{
		"phoneNumber": "+97455501234",
		"code":        code,
	})
	if rec.Code != 200 {
		t.Fatalf("verify with issued code: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestVerifyOTPRejectsBadCode(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	rec := doJSON(t, h, "POST", "/api/auth/verify-otp", "", map[string]any{
		"phoneNumber": "+97455501234",
		"code":        "9999",
	})
	if rec.Code != 401 {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthSessionLifecycle(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	token := signIn(t, h, "+97455501234")

	rec := doJSON(t, h, "GET", "/api/auth/me", token, nil)
	if rec.Code != 200 {
		t.Fatalf("me: status %d", rec.Code)
	}
	user := decodeBody(t, rec)["user"].(map[string]any)
	if user["phoneNumber"] != "+97455501234" {
		t.Fatalf("phoneNumber = %v", user["phoneNumber"])
	}

	// Second sign-in with the same phone reuses the account.
	token2 := signIn(t, h, "+97455501234")
	rec = doJSON(t, h, "GET", "/api/auth/me", token2, nil)
	user2 := decodeBody(t, rec)["user"].(map[string]any)
	if user2["id"] != user["id"] {
		t.Fatal("expected same user across sign-ins")
	}

	rec = doJSON(t, h, "POST", "/api/auth/logout", token, nil)
	if rec.Code != 200 {
		t.Fatalf("logout: status %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/api/auth/me", token, nil)
	if rec.Code != 401 {
		t.Fatalf("me after logout: status %d, want 401", rec.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	token := signIn(t, h, "+97455501234")

	rec := doJSON(t, h, "PATCH", "/api/auth/me", token, map[string]any{"name": "Noora"})
	if rec.Code != 200 {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	user := decodeBody(t, rec)["user"].(map[string]any)
	if user["name"] != "Noora" {
		t.Fatalf("name = %v", user["name"])
	}
}

func TestListingsRequireAuthToCreate(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	rec := doJSON(t, h, "POST", "/api/listings", "", map[string]any{
		"title": "x", "category": "Electronics", "price": 100,
	})
	if rec.Code != 401 {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestListingCRUD(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	seller := signIn(t, h, "+97455501234")
	other := signIn(t, h, "+97455509999")

	id := createListing(t, h, seller, map[string]any{
		"title":       "iPhone 13 Pro",
		"description": "Excellent condition, **barely used**.",
		"condition":   "Like New",
	})

	rec := doJSON(t, h, "GET", "/api/listings", "", nil)
	listings := decodeBody(t, rec)["listings"].([]any)
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}

	rec = doJSON(t, h, "GET", "/api/listings/"+id, "", nil)
	if rec.Code != 200 {
		t.Fatalf("detail: status %d", rec.Code)
	}
	body := decodeBody(t, rec)
	html, _ := body["descriptionHtml"].(string)
	if !strings.Contains(html, "<strong>barely used</strong>") {
		t.Fatalf("descriptionHtml = %q, want rendered markdown", html)
	}
	if views := body["listing"].(map[string]any)["views"].(float64); views != 1 {
		t.Fatalf("views = %v, want 1", views)
	}

	rec = doJSON(t, h, "PATCH", "/api/listings/"+id, other, map[string]any{"price": 1})
	if rec.Code != 403 {
		t.Fatalf("foreign patch: status %d, want 403", rec.Code)
	}

	rec = doJSON(t, h, "PATCH", "/api/listings/"+id, seller, map[string]any{"price": 2200, "status": "sold"})
	if rec.Code != 200 {
		t.Fatalf("patch: status %d body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody(t, rec)["listing"].(map[string]any)
	if updated["price"].(float64) != 2200 || updated["status"] != "sold" {
		t.Fatalf("patched listing = %v", updated)
	}

	rec = doJSON(t, h, "DELETE", "/api/listings/"+id, other, nil)
	if rec.Code != 403 {
		t.Fatalf("foreign delete: status %d, want 403", rec.Code)
	}
	rec = doJSON(t, h, "DELETE", "/api/listings/"+id, seller, nil)
	if rec.Code != 200 {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/api/listings", "", nil)
	if got := len(decodeBody(t, rec)["listings"].([]any)); got != 0 {
		t.Fatalf("got %d listings after delete, want 0", got)
	}
}

func TestScoreDealValidatesMarketPrice(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	token := signIn(t, h, "+97455501234")

	rec := doJSON(t, h, "POST", "/api/ai/score-deal", token, map[string]any{
		"price": 500, "marketPrice": 0, "category": "Electronics",
	})
	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	errObj := decodeBody(t, rec)["error"].(map[string]any)
	if errObj["code"] != "validation" {
		t.Fatalf("error code = %v", errObj["code"])
	}
}

func TestScoreDealFallbackWithoutProvider(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	token := signIn(t, h, "+97455501234")

	rec := doJSON(t, h, "POST", "/api/ai/score-deal", token, map[string]any{
		"price": 500, "marketPrice": 1000, "category": "Electronics", "condition": "Good",
	})
	if rec.Code != 200 {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	score := decodeBody(t, rec)["score"].(map[string]any)
	if score["source"] != "fallback" {
		t.Fatalf("source = %v, want fallback", score["source"])
	}
	if score["dealScore"].(float64) != 95 || score["riskScore"].(float64) != 15 {
		t.Fatalf("score = %v", score)
	}
}

func TestSuggestPriceFallsBackOnProviderError(t *testing.T) {
	h, _ := newTestHandler(t, &stubCompleter{err: errors.New("upstream down")})
	token := signIn(t, h, "+97455501234")

	rec := doJSON(t, h, "POST", "/api/ai/suggest-price", token, map[string]any{
		"title": "iPhone 13 Pro", "category": "Electronics",
		"condition": "New", "originalPrice": 1000,
	})
	if rec.Code != 200 {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	sug := decodeBody(t, rec)["suggestion"].(map[string]any)
	if sug["source"] != "fallback" {
		t.Fatalf("source = %v", sug["source"])
	}
	if sug["min"].(float64) != 765 || sug["max"].(float64) != 1035 || sug["recommended"].(float64) != 900 {
		t.Fatalf("suggestion = %v", sug)
	}
}

func TestGenerateDescriptionUsesProvider(t *testing.T) {
	h, _ := newTestHandler(t, &stubCompleter{response: "A pristine iPhone with warranty."})
	token := signIn(t, h, "+97455501234")

	rec := doJSON(t, h, "POST", "/api/ai/generate-description", token, map[string]any{
		"title": "iPhone 13 Pro", "category": "Electronics",
	})
	if rec.Code != 200 {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["description"] != "A pristine iPhone with warranty." || body["source"] != "ai" {
		t.Fatalf("body = %v", body)
	}
}

func TestRewriteDescriptionReturnsInputOnFailure(t *testing.T) {
	h, _ := newTestHandler(t, &stubCompleter{err: errors.New("upstream down")})
	token := signIn(t, h, "+97455501234")

	original := "Selling my old phone. Works fine."
	rec := doJSON(t, h, "POST", "/api/ai/rewrite-description", token, map[string]any{
		"description": original, "style": "professional",
	})
	if rec.Code != 200 {
		t.Fatalf("status %d", rec.Code)
	}
	if got := decodeBody(t, rec)["description"]; got != original {
		t.Fatalf("description = %v, want input unchanged", got)
	}
}

func TestAIRoutesRequireAuth(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	for _, path := range []string{
		"/api/ai/generate-description",
		"/api/ai/suggest-price",
		"/api/ai/score-deal",
		"/api/ai/draft-reply",
		"/api/ai/rewrite-description",
	} {
		rec := doJSON(t, h, "POST", path, "", map[string]any{})
		if rec.Code != 401 {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestConversationFlowWithAutoReply(t *testing.T) {
	h, _ := newTestHandler(t, &stubCompleter{err: errors.New("upstream down")})
	seller := signIn(t, h, "+97455501234")
	buyer := signIn(t, h, "+97455509999")

	listingID := createListing(t, h, seller, nil)

	// Sellers cannot open a conversation on their own listing.
	rec := doJSON(t, h, "POST", "/api/conversations", seller, map[string]any{"listingId": listingID})
	if rec.Code != 400 {
		t.Fatalf("own-listing conversation: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, "POST", "/api/conversations", buyer, map[string]any{
		"listingId": listingID, "aiAgentActive": true,
	})
	if rec.Code != 201 {
		t.Fatalf("create conversation: status %d body %s", rec.Code, rec.Body.String())
	}
	convID := decodeBody(t, rec)["conversation"].(map[string]any)["id"].(string)

	rec = doJSON(t, h, "POST", "/api/conversations/"+convID+"/messages", buyer, map[string]any{
		"content": "Is this still available?",
	})
	if rec.Code != 201 {
		t.Fatalf("send message: status %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	auto, ok := body["autoReply"].(map[string]any)
	if !ok {
		t.Fatalf("expected autoReply in response, got %v", body)
	}
	if auto["isAiGenerated"] != true {
		t.Fatalf("autoReply.isAiGenerated = %v", auto["isAiGenerated"])
	}
	// Provider is down, so the reply is the deterministic availability answer.
	if !strings.Contains(auto["content"].(string), "still available") {
		t.Fatalf("autoReply content = %q", auto["content"])
	}

	rec = doJSON(t, h, "GET", "/api/conversations/"+convID+"/messages", buyer, nil)
	messages := decodeBody(t, rec)["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}

	stranger := signIn(t, h, "+97455500000")
	rec = doJSON(t, h, "GET", "/api/conversations/"+convID+"/messages", stranger, nil)
	if rec.Code != 403 {
		t.Fatalf("stranger read: status %d, want 403", rec.Code)
	}

	rec = doJSON(t, h, "GET", "/api/conversations", buyer, nil)
	if got := len(decodeBody(t, rec)["conversations"].([]any)); got != 1 {
		t.Fatalf("buyer sees %d conversations, want 1", got)
	}
}

func TestDealListenersPremiumGate(t *testing.T) {
	h, st := newTestHandler(t, nil)
	token := signIn(t, h, "+97455501234")

	rec := doJSON(t, h, "POST", "/api/deal-listeners", token, map[string]any{"category": "Electronics"})
	if rec.Code != 403 {
		t.Fatalf("non-premium create: status %d, want 403", rec.Code)
	}

	user, err := st.GetUserByPhone("+97455501234")
	if err != nil {
		t.Fatalf("GetUserByPhone: %v", err)
	}
	user.IsPremium = true
	if err := st.UpdateUser(user); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	rec = doJSON(t, h, "POST", "/api/deal-listeners", token, map[string]any{
		"category": "Electronics",
		"keywords": []string{"iphone"},
		"maxPrice": 3000,
	})
	if rec.Code != 201 {
		t.Fatalf("premium create: status %d body %s", rec.Code, rec.Body.String())
	}
	listener := decodeBody(t, rec)["listener"].(map[string]any)
	if listener["minDealScore"].(float64) != 75 {
		t.Fatalf("minDealScore = %v, want default 75", listener["minDealScore"])
	}

	rec = doJSON(t, h, "GET", "/api/deal-listeners", token, nil)
	if got := len(decodeBody(t, rec)["listeners"].([]any)); got != 1 {
		t.Fatalf("got %d listeners, want 1", got)
	}

	rec = doJSON(t, h, "DELETE", "/api/deal-listeners/"+listener["id"].(string), token, nil)
	if rec.Code != 200 {
		t.Fatalf("deactivate: status %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/api/deal-listeners", token, nil)
	if got := len(decodeBody(t, rec)["listeners"].([]any)); got != 0 {
		t.Fatalf("got %d listeners after deactivate, want 0", got)
	}
}

func TestSavedListings(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	seller := signIn(t, h, "+97455501234")
	buyer := signIn(t, h, "+97455509999")

	listingID := createListing(t, h, seller, nil)

	rec := doJSON(t, h, "POST", "/api/saved-listings", buyer, map[string]any{"listingId": listingID})
	if rec.Code != 201 {
		t.Fatalf("save: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, "GET", "/api/listings/"+listingID, buyer, nil)
	if saved, _ := decodeBody(t, rec)["saved"].(bool); !saved {
		t.Fatal("detail should report saved=true for the saver")
	}

	rec = doJSON(t, h, "GET", "/api/saved-listings", buyer, nil)
	if got := len(decodeBody(t, rec)["listings"].([]any)); got != 1 {
		t.Fatalf("got %d saved listings, want 1", got)
	}

	rec = doJSON(t, h, "DELETE", "/api/saved-listings/"+listingID, buyer, nil)
	if rec.Code != 200 {
		t.Fatalf("unsave: status %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/api/saved-listings", buyer, nil)
	if got := len(decodeBody(t, rec)["listings"].([]any)); got != 0 {
		t.Fatalf("got %d saved listings after unsave, want 0", got)
	}
}

func TestUnknownListingIs404(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	rec := doJSON(t, h, "GET", "/api/listings/nope", "", nil)
	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
