package websocket

import (
	"net/http"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestWithJWTBearerToken(t *testing.T) {
	claims := jwt.MapClaims{"sub": "tester"}
	cfg := &dialConfig{headers: http.Header{}}

	opt := WithJWTBearerToken(claims, jwt.SigningMethodHS256, []byte("secret"))
	opt(cfg)

	auth := cfg.headers.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		t.Fatalf("Authorization header = %q, want a Bearer token", auth)
	}

	tok := strings.TrimPrefix(auth, "Bearer ")
	parsed, err := jwt.Parse(tok, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("jwt.Parse() error = %v, valid = %v", err, parsed.Valid)
	}
}
