package edgefilter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"harrys-team/backend/internal/auth"
	"harrys-team/backend/internal/response"
)

// LoginPath is the admin UI page that stays reachable without a token.
const LoginPath = "/admin/login"

// RequireUISession redirects admin UI requests without any token to the
// login page. Only presence is checked here.
func RequireUISession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == LoginPath {
			c.Next()
			return
		}
		if cookie, err := c.Cookie(auth.CookieName); err == nil && cookie != "" {
			c.Next()
			return
		}
		if auth.BearerToken(c.Request) != "" {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
	}
}

// RequireBearer rejects API requests that carry no bearer token with 401.
func RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.BearerToken(c.Request) == "" {
			response.Abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}
