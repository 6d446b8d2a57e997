package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"harrys-team/backend/internal/datastore"
	"harrys-team/backend/internal/response"
)

// CookieName is the cookie the admin UI gate looks for.
const CookieName = "auth-token"

// LoginPayload is the expected JSON body of a login request.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler serves the login, logout and whoami endpoints.
type Handler struct {
	store         AdminStore
	codec         *TokenCodec
	logger        *zap.Logger
	exposeErrors  bool
	secureCookies bool
}

func NewHandler(store AdminStore, codec *TokenCodec, logger *zap.Logger, exposeErrors bool) *Handler {
	return &Handler{store: store, codec: codec, logger: logger, exposeErrors: exposeErrors}
}

// SetSecureCookies marks the auth cookie Secure, for deployments behind TLS.
func (h *Handler) SetSecureCookies(secure bool) {
	h.secureCookies = secure
}

// Login checks the credentials against the stored bcrypt hash and issues a
// token on success.
func (h *Handler) Login(c *gin.Context) {
	var payload LoginPayload
	// A malformed body is treated like an empty one.
	_ = c.ShouldBindJSON(&payload)
	if payload.Email == "" || payload.Password == "" {
		response.Error(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	admin, err := h.store.GetActiveAdminByEmail(c.Request.Context(), payload.Email)
	if errors.Is(err, datastore.ErrNotFound) {
		response.Error(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("login lookup failed", zap.Error(err))
		response.Internal(c, err, h.exposeErrors)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(payload.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			h.logger.Warn("stored password hash is unusable", zap.Int("admin_id", admin.ID), zap.Error(err))
		}
		response.Error(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := h.store.UpdateAdminLastLogin(c.Request.Context(), admin.ID); err != nil {
		h.logger.Error("failed to record last login", zap.Int("admin_id", admin.ID), zap.Error(err))
		response.Internal(c, err, h.exposeErrors)
		return
	}

	user := adminUserFrom(admin)
	token, err := h.codec.Sign(user)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Error(err))
		response.Internal(c, err, h.exposeErrors)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(TokenTTL.Seconds()), "/", "", h.secureCookies, true)
	h.logger.Info("admin logged in", zap.Int("admin_id", user.ID))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    gin.H{"id": user.ID, "email": user.Email},
	})
}

// Logout clears the UI cookie. Tokens stay valid until they expire.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", h.secureCookies, true)
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// Me returns the identity of the verified token. It must run behind
// RequireAuth.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": claims.User()})
}
