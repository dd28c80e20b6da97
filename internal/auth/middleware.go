package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nikhilbhutani/longscribe/internal/config"
)

type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Middleware authenticates requests with either a static API key (hashed
// comparison against the configured set) or an HMAC-signed bearer token.
// With neither API keys nor a JWT secret configured the API runs open, which
// is the expected mode for local single-user deployments.
type Middleware struct {
	headerName string
	keyHashes  []string
	jwtSecret  []byte
}

func NewMiddleware(cfg config.AuthConfig) *Middleware {
	hashes := make([]string, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		hashes = append(hashes, HashAPIKey(k))
	}
	return &Middleware{
		headerName: cfg.APIKeyHeader,
		keyHashes:  hashes,
		jwtSecret:  []byte(cfg.JWTSecret),
	}
}

func (m *Middleware) enabled() bool {
	return len(m.keyHashes) > 0 || len(m.jwtSecret) > 0
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled() {
			next.ServeHTTP(w, r)
			return
		}

		if key := r.Header.Get(m.headerName); key != "" {
			if m.matchAPIKey(key) {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		if len(m.jwtSecret) > 0 {
			claims, err := m.parseBearer(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
			return
		}

		writeError(w, http.StatusUnauthorized, "missing API key")
	})
}

func (m *Middleware) matchAPIKey(key string) bool {
	hash := HashAPIKey(key)
	for _, h := range m.keyHashes {
		if subtle.ConstantTimeCompare([]byte(h), []byte(hash)) == 1 {
			return true
		}
	}
	return false
}

func (m *Middleware) parseBearer(r *http.Request) (*Claims, error) {
	tokenStr := extractBearerToken(r)
	if tokenStr == "" {
		return nil, fmt.Errorf("missing authorization token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, fmt.Errorf("token expired")
	}
	return claims, nil
}

func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

type ctxKey string

const claimsKey ctxKey = "claims"

func withClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
