package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"harrys-team/backend/internal/response"
)

const claimsKey = "auth.claims"

// RequireAuth runs the guard once per request and aborts with 401 when the
// token is missing, malformed, expired or signed with another secret.
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := g.Authenticate(c.Request)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireAuth.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
