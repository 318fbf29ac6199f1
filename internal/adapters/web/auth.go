package web

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// requireToken guards a handler with bearer-token auth. The presented token
// is checked against the configured bcrypt hash; with no hash configured the
// handler is open (single-operator deployments behind the onboarding AP).
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.TokenHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"status":  "error",
				"message": "Missing bearer token.",
			})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(s.TokenHash), []byte(token)); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"status":  "error",
				"message": "Invalid token.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
