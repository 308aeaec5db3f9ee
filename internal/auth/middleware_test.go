package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticVerifier map[string]string

func (s staticVerifier) VerifyToken(ctx context.Context, token string) (string, bool) {
	id, ok := s[token]
	return id, ok
}

func TestMiddleware(t *testing.T) {
	var seen string
	h := Middleware(staticVerifier{"tok": "tenant-1"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTenantID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		status int
		tenant string
	}{
		{"valid", "Bearer tok", http.StatusOK, "tenant-1"},
		{"lowercase scheme", "bearer tok", http.StatusOK, "tenant-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic tok", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer other", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/products", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.tenant, seen)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
