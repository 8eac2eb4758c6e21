package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lcmaths/practice-api/internal/auth"
	"github.com/lcmaths/practice-api/internal/db"
)

const minPasswordLen = 6

func HealthHandler(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":   true,
			"env":  env,
			"time": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// MeHandler reports the session's user, or null when not logged in. It never
// answers 401: an anonymous visitor is a normal state for this endpoint.
func MeHandler(s *auth.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.Resolve(r.Context(), auth.TokenFromRequest(r))
		if !ok {
			writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": u})
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func RegisterHandler(s *auth.Store, adminEmails []string, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required.")
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || len(req.Password) < minPasswordLen {
			writeError(w, http.StatusBadRequest, "Please provide a valid email and a password of 6+ characters.")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not create account.")
			return
		}

		u, err := s.CreateUser(r.Context(), email, hash, isAdminEmail(adminEmails, email))
		if err != nil {
			if errors.Is(err, db.ErrUniqueViolation) {
				writeError(w, http.StatusConflict, "An account with that email already exists.")
				return
			}
			writeError(w, http.StatusInternalServerError, "Could not create account.")
			return
		}

		token, err := s.CreateSession(r.Context(), u.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not create account.")
			return
		}
		setSessionCookie(w, token, secure)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func LoginHandler(s *auth.Store, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required.")
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))

		u, hash, err := s.GetUserByEmail(r.Context(), email)
		if err != nil || !auth.CheckPassword(hash, req.Password) {
			writeError(w, http.StatusUnauthorized, "Incorrect email or password.")
			return
		}

		token, err := s.CreateSession(r.Context(), u.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not log in.")
			return
		}
		setSessionCookie(w, token, secure)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func LogoutHandler(s *auth.Store, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := auth.TokenFromRequest(r); token != "" {
			_ = s.DeleteSession(r.Context(), token)
		}
		clearSessionCookie(w, secure)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func setSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

func isAdminEmail(adminEmails []string, email string) bool {
	for _, a := range adminEmails {
		if strings.EqualFold(strings.TrimSpace(a), email) {
			return true
		}
	}
	return false
}
