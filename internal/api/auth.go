package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"net/http"
	"strings"
)

// AdminTokenHeader is an alternative to "Authorization: Bearer <token>".
const AdminTokenHeader = "X-Admin-Token"

// AdminGuard protects match control routes with a shared token.
// A guard with an empty token lets every request through.
type AdminGuard struct {
	digest []byte
}

// NewAdminGuard creates a guard for token.
func NewAdminGuard(token string) *AdminGuard {
	if token == "" {
		return &AdminGuard{}
	}
	sum := sha256.Sum256([]byte(token))
	return &AdminGuard{digest: sum[:]}
}

// Enabled reports whether a token is required.
func (g *AdminGuard) Enabled() bool {
	return g != nil && g.digest != nil
}

// Check reports whether the request carries the admin token.
func (g *AdminGuard) Check(r *http.Request) bool {
	if !g.Enabled() {
		return true
	}
	presented := r.Header.Get(AdminTokenHeader)
	if auth := r.Header.Get("Authorization"); presented == "" && strings.HasPrefix(auth, "Bearer ") {
		presented = strings.TrimPrefix(auth, "Bearer ")
	}
	if presented == "" {
		return false
	}
	// Compare fixed-size digests so the comparison time does not depend on
	// the token length.
	sum := sha256.Sum256([]byte(presented))
	return hmac.Equal(sum[:], g.digest)
}

// Middleware rejects requests without the admin token
func (g *AdminGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Check(r) {
			RecordConnectionRejected("unauthorized")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   "unauthorized",
				"message": "Admin token required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
