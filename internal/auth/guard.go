package auth

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// Guard decides whether a request carries a valid admin token.
type Guard struct {
	codec *TokenCodec
}

func NewGuard(codec *TokenCodec) *Guard {
	return &Guard{codec: codec}
}

// BearerToken returns the token from an "Authorization: Bearer <token>"
// header, or "" when the header is absent or has another scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, bearerPrefix)
}

// Authenticate verifies the bearer token and returns its claims.
func (g *Guard) Authenticate(r *http.Request) (*Claims, bool) {
	token := BearerToken(r)
	if token == "" {
		return nil, false
	}
	result := g.codec.Verify(token)
	return result.Claims, result.Valid
}

// IsAuthenticated reports whether r carries a valid bearer token. It does not
// log and does not modify the request.
func (g *Guard) IsAuthenticated(r *http.Request) bool {
	_, ok := g.Authenticate(r)
	return ok
}
