package httpapi

import (
	"net/http"
	"strings"

	"github.com/nmansoor/souq/internal/ai"
)

// The AI routes require a signed-in user but never fail on model trouble;
// the gateway substitutes deterministic results and tags them with
// "source": "fallback".

func (s *Server) handleGenerateDescription(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	if _, err := s.currentUser(r); err != nil {
		writeError(w, err)
		return
	}
	var req ai.DescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, errValidation("title is required"))
		return
	}
	if req.Category == "" {
		writeError(w, errValidation("category is required"))
		return
	}
	res := s.ai.GenerateDescription(r.Context(), req)
	writeJSON(w, 200, map[string]any{"ok": true, "description": res.Text, "source": res.Source})
}

func (s *Server) handleSuggestPrice(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	if _, err := s.currentUser(r); err != nil {
		writeError(w, err)
		return
	}
	var req ai.PriceSuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, errValidation("title is required"))
		return
	}
	if req.Category == "" {
		writeError(w, errValidation("category is required"))
		return
	}
	res := s.ai.SuggestPriceRange(r.Context(), req)
	writeJSON(w, 200, map[string]any{"ok": true, "suggestion": res})
}

func (s *Server) handleScoreDeal(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	if _, err := s.currentUser(r); err != nil {
		writeError(w, err)
		return
	}
	var req ai.ScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Price <= 0 {
		writeError(w, errValidation("price must be positive"))
		return
	}
	if req.MarketPrice <= 0 {
		writeError(w, errValidation("marketPrice must be positive"))
		return
	}
	if req.Category == "" {
		writeError(w, errValidation("category is required"))
		return
	}
	res := s.ai.ScoreDeal(r.Context(), req)
	writeJSON(w, 200, map[string]any{"ok": true, "score": res})
}

func (s *Server) handleDraftReply(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	if _, err := s.currentUser(r); err != nil {
		writeError(w, err)
		return
	}
	var req ai.ReplyDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, errValidation("message is required"))
		return
	}
	res := s.ai.DraftSellerReply(r.Context(), req)
	writeJSON(w, 200, map[string]any{"ok": true, "reply": res.Text, "source": res.Source})
}

func (s *Server) handleRewriteDescription(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	if _, err := s.currentUser(r); err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Description string          `json:"description"`
		Style       ai.RewriteStyle `json:"style"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, errValidation("description is required"))
		return
	}
	rewritten := s.ai.RewriteDescription(r.Context(), req.Description, req.Style)
	writeJSON(w, 200, map[string]any{"ok": true, "description": rewritten})
}
