package httpapi

import (
	"net/http"
	"strings"

	"github.com/nmansoor/souq/internal/store"
)

func (s *Server) handleDealListeners(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		listeners, err := s.store.ListDealListenersByUser(user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "listeners": listeners})
	case http.MethodPost:
		if !user.IsPremium {
			writeError(w, errForbidden("deal listeners require a premium subscription"))
			return
		}
		var req struct {
			Category       string   `json:"category"`
			Keywords       []string `json:"keywords"`
			MaxPrice       int      `json:"maxPrice"`
			MinDealScore   int      `json:"minDealScore"`
			NotifyWhatsApp bool     `json:"notifyWhatsApp"`
			NotifyEmail    bool     `json:"notifyEmail"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Category == "" {
			writeError(w, errValidation("category is required"))
			return
		}
		l := &store.DealListener{
			UserID:         user.ID,
			Category:       req.Category,
			Keywords:       req.Keywords,
			MaxPrice:       req.MaxPrice,
			MinDealScore:   req.MinDealScore,
			NotifyWhatsApp: req.NotifyWhatsApp,
			NotifyEmail:    req.NotifyEmail,
		}
		if err := s.store.CreateDealListener(l); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 201, map[string]any{"ok": true, "listener": l})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleDealListenerByID(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodDelete) {
		return
	}
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/deal-listeners/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, errNotFound("no such listener"))
		return
	}
	if err := s.store.DeactivateDealListener(id, user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

func (s *Server) handleSavedListings(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		listings, err := s.store.ListSavedListings(user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "listings": listings})
	case http.MethodPost:
		var req struct {
			ListingID string `json:"listingId"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.ListingID == "" {
			writeError(w, errValidation("listingId is required"))
			return
		}
		if _, err := s.store.GetListing(req.ListingID); err != nil {
			writeError(w, err)
			return
		}
		saved, err := s.store.SaveListing(user.ID, req.ListingID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 201, map[string]any{"ok": true, "saved": saved})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleUnsaveListing serves DELETE /api/saved-listings/{listingId}.
func (s *Server) handleUnsaveListing(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodDelete) {
		return
	}
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	listingID := strings.TrimPrefix(r.URL.Path, "/api/saved-listings/")
	if listingID == "" || strings.Contains(listingID, "/") {
		writeError(w, errNotFound("no such listing"))
		return
	}
	if err := s.store.UnsaveListing(user.ID, listingID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}
