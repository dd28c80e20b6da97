package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nikhilbhutani/longscribe/internal/config"
)

func serve(m *Middleware, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateOpenMode(t *testing.T) {
	m := NewMiddleware(config.AuthConfig{APIKeyHeader: "X-API-Key"})

	rec := serve(m, httptest.NewRequest("GET", "/api/v1/transcriptions/x", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("open mode: status = %d, want 200", rec.Code)
	}
}

func TestAuthenticateAPIKey(t *testing.T) {
	m := NewMiddleware(config.AuthConfig{
		APIKeyHeader: "X-API-Key",
		APIKeys:      []string{"secret-key"},
	})

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"valid key", "secret-key", http.StatusOK},
		{"wrong key", "other-key", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			if rec := serve(m, req); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAuthenticateJWT(t *testing.T) {
	const secret = "jwt-secret"
	m := NewMiddleware(config.AuthConfig{APIKeyHeader: "X-API-Key", JWTSecret: secret})

	sign := func(secret string, expires time.Time) string {
		claims := &Claims{
			Sub: "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(expires),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatal(err)
		}
		return token
	}

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"valid token", sign(secret, time.Now().Add(time.Hour)), http.StatusOK},
		{"expired token", sign(secret, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"wrong secret", sign("other-secret", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"garbage", "not-a-token", http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if rec := serve(m, req); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
