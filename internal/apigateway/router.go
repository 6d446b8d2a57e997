package apigateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"harrys-team/backend/internal/auth"
	"harrys-team/backend/internal/contentmanagement"
	"harrys-team/backend/internal/edgefilter"
	"harrys-team/backend/internal/marketing"
	"harrys-team/backend/internal/objectstore"
	"harrys-team/backend/internal/response"
)

// Deps is everything the router wires together. Optional fields may be left
// zero.
type Deps struct {
	Logger    *zap.Logger
	Guard     *auth.Guard
	Auth      *auth.Handler
	Content   *contentmanagement.Handler
	Marketing *marketing.Handler
	Limiter   edgefilter.Limiter
	Origin    edgefilter.OriginPolicy

	// UploadDir is served at /images when uploads are stored locally.
	UploadDir string
	// Objects streams /images from MinIO when no public bucket URL is set.
	Objects *objectstore.MinioStore
	// AdminUIDir holds a built admin UI served under /admin.
	AdminUIDir string
	// Health reports whether the backing services are reachable.
	Health func(ctx context.Context) error
}

// SetupRouter builds the gin engine. Public marketing routes are open; the
// admin API sits behind the edge filter and the auth guard.
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(LoggerMiddleware(d.Logger), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				d.Logger.Warn("health check failed", zap.Error(err))
				response.Error(c, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		response.Message(c, http.StatusOK, "ok")
	})

	originCheck := edgefilter.OriginCheck(d.Origin, d.Logger)
	rateLimit := edgefilter.RateLimit(d.Limiter, d.Logger)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		authRoutes.POST("/login", originCheck, rateLimit, d.Auth.Login)
		authRoutes.POST("/logout", d.Auth.Logout)
		authRoutes.GET("/me", d.Guard.RequireAuth(), d.Auth.Me)

		api.POST("/contact", originCheck, rateLimit, d.Marketing.SubmitContact)
		d.Marketing.Register(api.Group("/public"))

		protected := api.Group("", originCheck, rateLimit, edgefilter.RequireBearer(), d.Guard.RequireAuth())
		d.Content.Register(protected)
	}

	switch {
	case d.Objects != nil:
		router.GET("/images/*filepath", serveObject(d.Objects, d.Logger))
	case d.UploadDir != "":
		router.Static("/images", filepath.Join(d.UploadDir, "images"))
	}

	if d.AdminUIDir != "" {
		admin := router.Group("/admin", originCheck, rateLimit, edgefilter.RequireUISession())
		admin.GET("/*filepath", serveUI(d.AdminUIDir))
	}

	return router
}

// serveUI serves files from dir and falls back to index.html so client-side
// routes such as /admin/login resolve.
func serveUI(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rel := strings.TrimPrefix(c.Param("filepath"), "/")
		if rel != "" {
			path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+rel)))
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				c.File(path)
				return
			}
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}

// serveObject streams an uploaded image out of MinIO.
func serveObject(objects *objectstore.MinioStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "images" + c.Param("filepath")
		obj, info, err := objects.Open(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, objectstore.ErrObjectNotFound) {
				c.Status(http.StatusNotFound)
				return
			}
			logger.Error("failed to open object", zap.String("key", key), zap.Error(err))
			c.Status(http.StatusBadGateway)
			return
		}
		defer obj.Close()

		c.Header("Content-Type", info.ContentType)
		c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
		c.Header("ETag", info.ETag)
		c.Status(http.StatusOK)
		if _, err := io.Copy(c.Writer, obj); err != nil {
			logger.Warn("object stream interrupted", zap.String("key", key), zap.Error(err))
		}
	}
}
