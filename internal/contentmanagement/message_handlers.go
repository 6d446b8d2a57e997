package contentmanagement

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"harrys-team/backend/internal/datastore"
	"harrys-team/backend/internal/response"
)

// ListContactMessages lists submissions newest first; ?unread=true limits
// the list to unread ones.
func (h *Handler) ListContactMessages(c *gin.Context) {
	messages, err := h.store.ListContactMessages(c.Request.Context(), c.Query("unread") == "true")
	if err != nil {
		h.internalError(c, "failed to list contact messages", err)
		return
	}
	response.Data(c, http.StatusOK, messages)
}

func (h *Handler) MarkContactMessageRead(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid contact message ID format")
		return
	}
	m, err := h.store.MarkContactMessageRead(c.Request.Context(), id)
	if errors.Is(err, datastore.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Contact message not found")
		return
	}
	if err != nil {
		h.internalError(c, "failed to mark contact message read", err)
		return
	}
	response.Data(c, http.StatusOK, m)
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

// UpdateSiteSettings applies a JSON partial update. Omitted fields keep
// their value.
func (h *Handler) UpdateSiteSettings(c *gin.Context) {
	var patch datastore.SiteSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	st, err := h.store.UpdateSiteSettings(c.Request.Context(), patch)
	if err != nil {
		h.internalError(c, "failed to update site settings", err)
		return
	}
	response.Data(c, http.StatusOK, st)
}
