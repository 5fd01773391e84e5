package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nmansoor/souq/internal/ai"
	"github.com/nmansoor/souq/internal/store"
)

const (
	sessionCookieName = "souq_session"
	sessionTTL        = 30 * 24 * time.Hour
	otpTTL            = 10 * time.Minute
)

type Server struct {
	store   *store.SQLiteStore
	ai      *ai.Gateway
	devMode bool
}

// NewServer wires the full API surface. devMode echoes OTP codes in the
// request-otp response instead of delivering them over SMS; never enable
// it in production.
func NewServer(st *store.SQLiteStore, gateway *ai.Gateway, devMode bool) http.Handler {
	s := &Server{store: st, ai: gateway, devMode: devMode}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/request-otp", s.handleRequestOTP)
	mux.HandleFunc("/api/auth/verify-otp", s.handleVerifyOTP)
	mux.HandleFunc("/api/auth/me", s.handleMe)
	mux.HandleFunc("/api/auth/logout", s.handleLogout)

	mux.HandleFunc("/api/listings", s.handleListings)
	mux.HandleFunc("/api/listings/", s.handleListingByID)

	mux.HandleFunc("/api/ai/generate-description", s.handleGenerateDescription)
	mux.HandleFunc("/api/ai/suggest-price", s.handleSuggestPrice)
	mux.HandleFunc("/api/ai/score-deal", s.handleScoreDeal)
	mux.HandleFunc("/api/ai/draft-reply", s.handleDraftReply)
	mux.HandleFunc("/api/ai/rewrite-description", s.handleRewriteDescription)

	mux.HandleFunc("/api/conversations", s.handleConversations)
	mux.HandleFunc("/api/conversations/", s.handleConversationMessages)

	mux.HandleFunc("/api/deal-listeners", s.handleDealListeners)
	mux.HandleFunc("/api/deal-listeners/", s.handleDealListenerByID)

	mux.HandleFunc("/api/saved-listings", s.handleSavedListings)
	mux.HandleFunc("/api/saved-listings/", s.handleUnsaveListing)

	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

// --- errors ---

const (
	codeValidation   = "validation"
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeNotFound     = "not_found"
	codeInternal     = "internal"
)

type apiError struct {
	Code    string
	Message string
	Status  int
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errValidation(message string) *apiError {
	return &apiError{Code: codeValidation, Message: message, Status: 400}
}

func errUnauthorized(message string) *apiError {
	return &apiError{Code: codeUnauthorized, Message: message, Status: 401}
}

func errForbidden(message string) *apiError {
	return &apiError{Code: codeForbidden, Message: message, Status: 403}
}

func errNotFound(message string) *apiError {
	return &apiError{Code: codeNotFound, Message: message, Status: 404}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		writeJSON(w, ae.Status, map[string]any{
			"ok":    false,
			"error": map[string]any{"code": ae.Code, "message": ae.Message},
		})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, 404, map[string]any{
			"ok":    false,
			"error": map[string]any{"code": codeNotFound, "message": "not found"},
		})
		return
	}
	writeJSON(w, 500, map[string]any{
		"ok":    false,
		"error": map[string]any{"code": codeInternal, "message": err.Error()},
	})
}

// --- request plumbing ---

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errValidation("request body required")
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return errValidation("unreadable body")
	}
	if len(blob) == 0 {
		return errValidation("request body required")
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		return errValidation("invalid json: " + err.Error())
	}
	return nil
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// --- sessions ---

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

func (s *Server) currentUser(r *http.Request) (*store.User, error) {
	token := sessionToken(r)
	if token == "" {
		return nil, errUnauthorized("not authenticated")
	}
	sess, err := s.store.GetSession(token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errUnauthorized("invalid or expired session")
		}
		return nil, err
	}
	user, err := s.store.GetUser(sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errUnauthorized("invalid or expired session")
		}
		return nil, err
	}
	return user, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}
