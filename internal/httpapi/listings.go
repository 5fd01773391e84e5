package httpapi

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/nmansoor/souq/internal/store"
)

var descriptionMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderDescription converts a listing description from markdown to HTML
// for the detail view. On render failure the raw text is returned so the
// page still has something to show.
func renderDescription(text string) string {
	var buf bytes.Buffer
	if err := descriptionMarkdown.Convert([]byte(text), &buf); err != nil {
		log.Printf("listing markdown render: %v", err)
		return text
	}
	return buf.String()
}

type listingPayload struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	Condition     string         `json:"condition"`
	Price         int            `json:"price"`
	OriginalPrice int            `json:"originalPrice"`
	Images        []string       `json:"images"`
	Location      string         `json:"location"`
	Specs         map[string]any `json:"specs"`
	DealScore     *int           `json:"dealScore"`
	RiskScore     *int           `json:"riskScore"`
	Status        string         `json:"status"`
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := store.ListingFilter{
			Category: r.URL.Query().Get("category"),
			Search:   r.URL.Query().Get("search"),
			SellerID: r.URL.Query().Get("sellerId"),
		}
		listings, err := s.store.ListListings(filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "listings": listings})
	case http.MethodPost:
		user, err := s.currentUser(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var req listingPayload
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
		if req.Price <= 0 {
			writeError(w, errValidation("price must be positive"))
			return
		}
		l := &store.Listing{
			SellerID:      user.ID,
			Title:         strings.TrimSpace(req.Title),
			Description:   req.Description,
			Category:      req.Category,
			Condition:     req.Condition,
			Price:         req.Price,
			OriginalPrice: req.OriginalPrice,
			Images:        req.Images,
			Location:      req.Location,
			Specs:         req.Specs,
			DealScore:     req.DealScore,
			RiskScore:     req.RiskScore,
		}
		if err := s.store.CreateListing(l); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 201, map[string]any{"ok": true, "listing": l})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListingByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/listings/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, errNotFound("no such listing"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		l, err := s.store.GetListing(id)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.store.IncrementViews(id); err != nil {
			writeError(w, err)
			return
		}
		l.Views++

		resp := map[string]any{
			"ok":              true,
			"listing":         l,
			"descriptionHtml": renderDescription(l.Description),
		}
		if user, err := s.currentUser(r); err == nil {
			saved, err := s.store.IsListingSaved(user.ID, id)
			if err != nil {
				writeError(w, err)
				return
			}
			resp["saved"] = saved
		}
		writeJSON(w, 200, resp)
	case http.MethodPatch:
		user, err := s.currentUser(r)
		if err != nil {
			writeError(w, err)
			return
		}
		l, err := s.store.GetListing(id)
		if err != nil {
			writeError(w, err)
			return
		}
		if l.SellerID != user.ID {
			writeError(w, errForbidden("not your listing"))
			return
		}
		var req listingPayload
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		applyListingPatch(l, &req)
		if err := s.store.UpdateListing(l); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "listing": l})
	case http.MethodDelete:
		user, err := s.currentUser(r)
		if err != nil {
			writeError(w, err)
			return
		}
		l, err := s.store.GetListing(id)
		if err != nil {
			writeError(w, err)
			return
		}
		if l.SellerID != user.ID {
			writeError(w, errForbidden("not your listing"))
			return
		}
		if err := s.store.DeleteListing(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func applyListingPatch(l *store.Listing, req *listingPayload) {
	if strings.TrimSpace(req.Title) != "" {
		l.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		l.Description = req.Description
	}
	if req.Category != "" {
		l.Category = req.Category
	}
	if req.Condition != "" {
		l.Condition = req.Condition
	}
	if req.Price > 0 {
		l.Price = req.Price
	}
	if req.OriginalPrice > 0 {
		l.OriginalPrice = req.OriginalPrice
	}
	if req.Images != nil {
		l.Images = req.Images
	}
	if req.Location != "" {
		l.Location = req.Location
	}
	if req.Specs != nil {
		l.Specs = req.Specs
	}
	if req.DealScore != nil {
		l.DealScore = req.DealScore
	}
	if req.RiskScore != nil {
		l.RiskScore = req.RiskScore
	}
	switch store.ListingStatus(req.Status) {
	case store.ListingActive, store.ListingSold:
		l.Status = store.ListingStatus(req.Status)
	}
}
