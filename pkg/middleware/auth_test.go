package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hris-auth/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var secret = []byte("test-secret")

func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := utils.GetClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(claims.Email))
	})
}

func TestAuthJWT(t *testing.T) {
	valid, err := utils.GenerateToken(utils.Claims{Email: "e100@example.com"}, secret, time.Hour, time.Now())
	require.NoError(t, err)
	expired, err := utils.GenerateToken(utils.Claims{Email: "e100@example.com"}, secret, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, "e100@example.com"},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, "e100@example.com"},
		{"missing header", "", http.StatusUnauthorized, `{"error":"Missing authorization token"}`},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, `{"error":"Invalid token format. Use: Bearer <token>"}`},
		{"no token", "Bearer ", http.StatusUnauthorized, `{"error":"Invalid token format. Use: Bearer <token>"}`},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, `{"error":"Invalid or expired token"}`},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, `{"error":"Invalid or expired token"}`},
	}

	handler := AuthJWT(secret, zap.NewNop())(claimsEcho())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/send-password-change-code", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}
