package marketing

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"harrys-team/backend/internal/datastore"
	"harrys-team/backend/internal/notify"
	"harrys-team/backend/internal/response"
)

// Store is the read side of the public site plus contact persistence.
type Store interface {
	ListHeroImages(ctx context.Context, activeOnly bool) ([]*datastore.HeroImage, error)
	ListTeamMembers(ctx context.Context, activeOnly bool) ([]*datastore.TeamMember, error)
	ListEvents(ctx context.Context) ([]*datastore.Event, error)
	GetActiveEvent(ctx context.Context) (*datastore.Event, error)
	GetEvent(ctx context.Context, id string) (*datastore.Event, error)
	ListPrograms(ctx context.Context) ([]*datastore.Program, error)
	GetProgram(ctx context.Context, id string) (*datastore.Program, error)
	GetSiteSettings(ctx context.Context) (*datastore.SiteSettings, error)
	CreateContactMessage(ctx context.Context, in datastore.ContactMessageInput) (*datastore.ContactMessage, error)
}

// Handler serves the unauthenticated marketing endpoints.
type Handler struct {
	store        Store
	notifier     notify.ContactNotifier
	logger       *zap.Logger
	exposeErrors bool
}

func NewHandler(store Store, notifier notify.ContactNotifier, logger *zap.Logger, exposeErrors bool) *Handler {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Handler{store: store, notifier: notifier, logger: logger, exposeErrors: exposeErrors}
}

// Register mounts the read-only routes on public.
func (h *Handler) Register(public *gin.RouterGroup) {
	public.GET("/hero-images", h.ListHeroImages)
	public.GET("/team-members", h.ListTeamMembers)
	public.GET("/events", h.ListEvents)
	public.GET("/events/active", h.GetActiveEvent)
	public.GET("/events/:id", h.GetEvent)
	public.GET("/programs", h.ListPrograms)
	public.GET("/programs/:id", h.GetProgram)
	public.GET("/site-settings", h.GetSiteSettings)
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	response.Internal(c, err, h.exposeErrors)
}

// ListHeroImages returns the active slides by position.
func (h *Handler) ListHeroImages(c *gin.Context) {
	images, err := h.store.ListHeroImages(c.Request.Context(), true)
	if err != nil {
		h.internalError(c, "failed to list hero images", err)
		return
	}
	response.Data(c, http.StatusOK, images)
}

// ListTeamMembers returns the active members by name.
func (h *Handler) ListTeamMembers(c *gin.Context) {
	members, err := h.store.ListTeamMembers(c.Request.Context(), true)
	if err != nil {
		h.internalError(c, "failed to list team members", err)
		return
	}
	response.Data(c, http.StatusOK, members)
}

func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.store.ListEvents(c.Request.Context())
	if err != nil {
		h.internalError(c, "failed to list events", err)
		return
	}
	response.Data(c, http.StatusOK, events)
}

// GetActiveEvent returns the latest active event, 404 when there is none.
func (h *Handler) GetActiveEvent(c *gin.Context) {
	event, err := h.store.GetActiveEvent(c.Request.Context())
	if errors.Is(err, datastore.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "No active event")
		return
	}
	if err != nil {
		h.internalError(c, "failed to get active event", err)
		return
	}
	response.Data(c, http.StatusOK, event)
}

func (h *Handler) GetEvent(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, http.StatusNotFound, "Event not found")
		return
	}
	event, err := h.store.GetEvent(c.Request.Context(), id)
	if errors.Is(err, datastore.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		h.internalError(c, "failed to get event", err)
		return
	}
	response.Data(c, http.StatusOK, event)
}

func (h *Handler) ListPrograms(c *gin.Context) {
	programs, err := h.store.ListPrograms(c.Request.Context())
	if err != nil {
		h.internalError(c, "failed to list programs", err)
		return
	}
	response.Data(c, http.StatusOK, programs)
}

func (h *Handler) GetProgram(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, http.StatusNotFound, "Program not found")
		return
	}
	program, err := h.store.GetProgram(c.Request.Context(), id)
	if errors.Is(err, datastore.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Program not found")
		return
	}
	if err != nil {
		h.internalError(c, "failed to get program", err)
		return
	}
	response.Data(c, http.StatusOK, program)
}

func (h *Handler) GetSiteSettings(c *gin.Context) {
	st, err := h.store.GetSiteSettings(c.Request.Context())
	if errors.Is(err, datastore.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Site settings not found")
		return
	}
	if err != nil {
		h.internalError(c, "failed to get site settings", err)
		return
	}
	response.Data(c, http.StatusOK, st)
}
