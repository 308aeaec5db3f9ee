package auth

import (
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/response"
)

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Middleware rejects requests without a verifiable bearer token and puts the
// tenant id on the request context.
func Middleware(verifier TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		tenantID, ok := verifier.VerifyToken(r.Context(), token)
		if !ok {
			unauthorized(w, r)
			return
		}

		if rec, ok := w.(interface{ SetTenant(string) }); ok {
			rec.SetTenant(tenantID)
		}
		next.ServeHTTP(w, r.WithContext(WithTenantID(r.Context(), tenantID)))
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	response.Error(w, r, model.ErrUnauthenticated)
}
