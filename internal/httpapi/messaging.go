package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nmansoor/souq/internal/ai"
	"github.com/nmansoor/souq/internal/store"
)

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		user, err := s.currentUser(r)
		if err != nil {
			writeError(w, err)
			return
		}
		conversations, err := s.store.ListConversationsByUser(user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "conversations": conversations})
	case http.MethodPost:
		user, err := s.currentUser(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var req struct {
			ListingID     string `json:"listingId"`
			AIAgentActive bool   `json:"aiAgentActive"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.ListingID == "" {
			writeError(w, errValidation("listingId is required"))
			return
		}
		listing, err := s.store.GetListing(req.ListingID)
		if err != nil {
			writeError(w, err)
			return
		}
		if listing.SellerID == user.ID {
			writeError(w, errValidation("cannot start a conversation on your own listing"))
			return
		}
		c := &store.Conversation{
			ListingID:     listing.ID,
			BuyerID:       user.ID,
			SellerID:      listing.SellerID,
			AIAgentActive: req.AIAgentActive,
		}
		if err := s.store.CreateConversation(c); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 201, map[string]any{"ok": true, "conversation": c})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleConversationMessages serves /api/conversations/{id}/messages.
func (s *Server) handleConversationMessages(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
	convID, tail, _ := strings.Cut(rest, "/")
	if convID == "" || tail != "messages" {
		writeError(w, errNotFound("no such resource"))
		return
	}

	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	conv, err := s.store.GetConversation(convID)
	if err != nil {
		writeError(w, err)
		return
	}
	if conv.BuyerID != user.ID && conv.SellerID != user.ID {
		writeError(w, errForbidden("not a participant"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		messages, err := s.store.ListMessages(convID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "messages": messages})
	case http.MethodPost:
		var req struct {
			Content string `json:"content"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			writeError(w, errValidation("content is required"))
			return
		}
		m := &store.Message{
			ConversationID: convID,
			SenderID:       user.ID,
			Content:        req.Content,
		}
		if err := s.store.CreateMessage(m); err != nil {
			writeError(w, err)
			return
		}

		resp := map[string]any{"ok": true, "message": m}
		if conv.AIAgentActive && user.ID == conv.BuyerID {
			if reply := s.autoReply(r, conv, m); reply != nil {
				resp["autoReply"] = reply
			}
		}
		writeJSON(w, 201, resp)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// autoReply drafts and stores a seller-side response when the seller has
// the AI agent enabled on the conversation. A nil return means the reply
// could not be stored; the buyer's message already went through.
func (s *Server) autoReply(r *http.Request, conv *store.Conversation, incoming *store.Message) *store.Message {
	history, err := s.store.ListMessages(conv.ID)
	if err != nil {
		return nil
	}
	turns := make([]ai.ChatTurn, 0, len(history))
	for _, m := range history {
		if m.ID == incoming.ID {
			continue
		}
		role := "user"
		if m.SenderID == conv.SellerID {
			role = "assistant"
		}
		turns = append(turns, ai.ChatTurn{Role: role, Content: m.Content})
	}

	listingContext := ""
	if listing, err := s.store.GetListing(conv.ListingID); err == nil {
		listingContext = fmt.Sprintf("%s - %s, %s condition, QAR %d",
			listing.Title, listing.Category, listing.Condition, listing.Price)
	}

	draft := s.ai.DraftSellerReply(r.Context(), ai.ReplyDraftRequest{
		Message:             incoming.Content,
		ConversationHistory: turns,
		ListingContext:      listingContext,
	})

	reply := &store.Message{
		ConversationID: conv.ID,
		SenderID:       conv.SellerID,
		Content:        draft.Text,
		IsAIGenerated:  true,
	}
	if err := s.store.CreateMessage(reply); err != nil {
		return nil
	}
	return reply
}
