package edgefilter

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"harrys-team/backend/internal/response"
)

// OriginPolicy configures the cross-site check for mutating requests.
type OriginPolicy struct {
	// AllowedOrigins are extra origins (scheme://host[:port]) accepted besides
	// the request's own host.
	AllowedOrigins []string
	// Strict denies mutations that carry neither Origin nor Referer when the
	// request comes from a browser.
	Strict bool
	// SessionCookie marks a browser session, e.g. "auth-token".
	SessionCookie string
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// hostOf returns the host[:port] of an Origin or Referer value, or "" when it
// does not parse as an absolute URL.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Host)
}

func (p OriginPolicy) sameSite(raw, host string) bool {
	h := hostOf(raw)
	if h == "" {
		return false
	}
	if h == strings.ToLower(host) {
		return true
	}
	for _, allowed := range p.AllowedOrigins {
		if h == hostOf(allowed) {
			return true
		}
	}
	return false
}

// Permits reports whether r passes the cross-site check.
func (p OriginPolicy) Permits(r *http.Request) bool {
	if !isMutating(r.Method) {
		return true
	}
	origin := r.Header.Get("Origin")
	referer := r.Header.Get("Referer")
	if origin != "" && !p.sameSite(origin, r.Host) {
		return false
	}
	if referer != "" && !p.sameSite(referer, r.Host) {
		return false
	}
	if origin == "" && referer == "" && p.Strict && p.browserContext(r) {
		return false
	}
	return true
}

func (p OriginPolicy) browserContext(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Site") != "" {
		return true
	}
	if p.SessionCookie == "" {
		return false
	}
	_, err := r.Cookie(p.SessionCookie)
	return err == nil
}

// OriginCheck rejects cross-site mutations with 403.
func OriginCheck(policy OriginPolicy, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.Permits(c.Request) {
			logger.Warn("cross-site request rejected",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("origin", c.GetHeader("Origin")),
				zap.String("referer", c.GetHeader("Referer")),
			)
			response.Abort(c, http.StatusForbidden, "Cross-site request forbidden")
			return
		}
		c.Next()
	}
}
