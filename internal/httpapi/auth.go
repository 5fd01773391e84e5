package httpapi

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/nmansoor/souq/internal/store"
)

// demoCode always verifies so the app can be exercised without an SMS
// provider. Real codes issued by request-otp work alongside it.
const demoCode = "1234"

func generateOTP() string {
	return fmt.Sprintf("%04d", 1000+rand.IntN(9000))
}

func normalizePhone(raw string) string {
	return strings.TrimSpace(raw)
}

func (s *Server) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	phone := normalizePhone(req.PhoneNumber)
	if phone == "" {
		writeError(w, errValidation("phoneNumber is required"))
		return
	}

	code := generateOTP()
	if _, err := s.store.CreateAuthCode(phone, code, time.Now().Add(otpTTL)); err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{"ok": true, "message": "OTP sent"}
	if s.devMode {
		resp["devCode"] = code
	}
	writeJSON(w, 200, resp)
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		Code        string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	phone := normalizePhone(req.PhoneNumber)
	code := strings.TrimSpace(req.Code)
	if phone == "" || code == "" {
		writeError(w, errValidation("phoneNumber and code are required"))
		return
	}

	if code != demoCode {
		ac, err := s.store.GetActiveAuthCode(phone, code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, errUnauthorized("invalid or expired code"))
				return
			}
			writeError(w, err)
			return
		}
		if err := s.store.MarkAuthCodeVerified(ac.ID); err != nil {
			writeError(w, err)
			return
		}
	}

	user, err := s.store.GetUserByPhone(phone)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.store.CreateUser(phone)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	sess, err := s.store.CreateSession(user.ID, sessionTTL)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, 200, map[string]any{"ok": true, "user": user, "token": sess.Token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		user, err := s.currentUser(r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "user": user})
	case http.MethodPatch:
		user, err := s.currentUser(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var req struct {
			Name      *string `json:"name"`
			AvatarURL *string `json:"avatarUrl"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Name != nil {
			user.Name = strings.TrimSpace(*req.Name)
		}
		if req.AvatarURL != nil {
			user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
		}
		if err := s.store.UpdateUser(user); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "user": user})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	if token := sessionToken(r); token != "" {
		if err := s.store.DeleteSession(token); err != nil {
			writeError(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, 200, map[string]any{"ok": true})
}
