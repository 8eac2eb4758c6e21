package auth

import (
	"encoding/json"
	"net/http"
)

// SessionCookie is the name of the HTTP-only session cookie.
const SessionCookie = "session_id"

// TokenFromRequest extracts the session token, or "" when absent.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// RequireUser resolves the session cookie and injects the user into the
// request context. Unauthenticated requests get a terminal 401.
func RequireUser(s *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := s.Resolve(r.Context(), TokenFromRequest(r))
			if !ok {
				denyJSON(w, http.StatusUnauthorized, "Unauthorised")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireAdmin checks the is_admin flag of the context user. Mount after
// RequireUser.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				denyJSON(w, http.StatusUnauthorized, "Unauthorised")
				return
			}
			if !u.IsAdmin {
				denyJSON(w, http.StatusForbidden, "Admin only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
