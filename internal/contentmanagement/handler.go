package contentmanagement

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"harrys-team/backend/internal/datastore"
	"harrys-team/backend/internal/objectstore"
	"harrys-team/backend/internal/response"
)

// maxFormSize bounds the in-memory part of a multipart form.
const maxFormSize = 32 << 20

// Store is the persistence behind the admin content endpoints.
// *datastore.Store implements it.
type Store interface {
	ListHeroImages(ctx context.Context, activeOnly bool) ([]*datastore.HeroImage, error)
	GetHeroImage(ctx context.Context, id int) (*datastore.HeroImage, error)
	CreateHeroImage(ctx context.Context, in datastore.HeroImageInput) (*datastore.HeroImage, error)
	UpdateHeroImage(ctx context.Context, id int, in datastore.HeroImageInput) (*datastore.HeroImage, error)
	DeleteHeroImage(ctx context.Context, id int) (string, error)

	ListTeamMembers(ctx context.Context, activeOnly bool) ([]*datastore.TeamMember, error)
	GetTeamMember(ctx context.Context, id int) (*datastore.TeamMember, error)
	CreateTeamMember(ctx context.Context, in datastore.TeamMemberInput) (*datastore.TeamMember, error)
	UpdateTeamMember(ctx context.Context, id int, in datastore.TeamMemberInput) (*datastore.TeamMember, error)
	DeleteTeamMember(ctx context.Context, id int) (string, error)

	ListContactMessages(ctx context.Context, unreadOnly bool) ([]*datastore.ContactMessage, error)
	MarkContactMessageRead(ctx context.Context, id string) (*datastore.ContactMessage, error)

	GetSiteSettings(ctx context.Context) (*datastore.SiteSettings, error)
	UpdateSiteSettings(ctx context.Context, patch datastore.SiteSettingsPatch) (*datastore.SiteSettings, error)
}

// Handler serves the protected content endpoints. Every route is expected to
// run behind the auth guard.
type Handler struct {
	store        Store
	uploader     objectstore.Uploader
	logger       *zap.Logger
	exposeErrors bool
}

func NewHandler(store Store, uploader objectstore.Uploader, logger *zap.Logger, exposeErrors bool) *Handler {
	return &Handler{store: store, uploader: uploader, logger: logger, exposeErrors: exposeErrors}
}

// Register mounts the content routes on a guarded group.
func (h *Handler) Register(api *gin.RouterGroup) {
	hero := api.Group("/hero-images")
	hero.GET("", h.ListHeroImages)
	hero.POST("", h.CreateHeroImage)
	hero.GET("/:id", h.GetHeroImage)
	hero.PUT("/:id", h.UpdateHeroImage)
	hero.DELETE("/:id", h.DeleteHeroImage)

	team := api.Group("/team-members")
	team.GET("", h.ListTeamMembers)
	team.POST("", h.CreateTeamMember)
	team.GET("/:id", h.GetTeamMember)
	team.PUT("/:id", h.UpdateTeamMember)
	team.DELETE("/:id", h.DeleteTeamMember)

	messages := api.Group("/contact-messages")
	messages.GET("", h.ListContactMessages)
	messages.PUT("/:id/read", h.MarkContactMessageRead)

	api.GET("/site-settings", h.GetSiteSettings)
	api.PUT("/site-settings", h.UpdateSiteSettings)
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	response.Internal(c, err, h.exposeErrors)
}

// intID parses the :id path parameter, writing a 400 when it is not an
// integer in the range of the SERIAL id columns.
func intID(c *gin.Context, entity string) (int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid "+entity+" ID format")
		return 0, false
	}
	return int(id), true
}

// parseForm reads a multipart (or urlencoded) body into the request.
func parseForm(c *gin.Context) bool {
	err := c.Request.ParseMultipartForm(maxFormSize)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		response.Error(c, http.StatusBadRequest, "Invalid form data")
		return false
	}
	return true
}

// formFile returns the uploaded file under field, or nil when none was sent.
func formFile(c *gin.Context, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil || fh.Size == 0 {
		return nil
	}
	return fh
}

func formBool(c *gin.Context, field string) bool {
	return c.PostForm(field) == "true"
}

func formInt(c *gin.Context, field string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.PostForm(field)))
	if err != nil {
		return 0
	}
	return n
}

// formOptional returns nil for a missing or empty field.
func formOptional(c *gin.Context, field string) *string {
	v := c.PostForm(field)
	if v == "" {
		return nil
	}
	return &v
}

// storeUpload saves fh into folder. An invalid image is answered with 400;
// any other failure with 500. ok is false when a response was written.
func (h *Handler) storeUpload(c *gin.Context, folder objectstore.Folder, fh *multipart.FileHeader) (string, bool) {
	url, err := h.uploader.Save(c.Request.Context(), folder, fh)
	if err != nil {
		var imgErr *objectstore.ImageError
		if errors.As(err, &imgErr) {
			response.Error(c, http.StatusBadRequest, imgErr.Error())
			return "", false
		}
		h.internalError(c, "failed to store upload", err)
		return "", false
	}
	return url, true
}

// discardUpload removes a file stored for a request that then failed.
func (h *Handler) discardUpload(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := h.uploader.Delete(ctx, url); err != nil {
		h.logger.Error("failed to delete orphaned upload", zap.String("url", url), zap.Error(err))
	}
}

// removeFile deletes the file of a deleted row. Failure is logged only.
func (h *Handler) removeFile(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := h.uploader.Delete(ctx, url); err != nil {
		h.logger.Warn("row deleted but its file could not be removed", zap.String("url", url), zap.Error(err))
	}
}
