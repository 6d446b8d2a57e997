package contentmanagement

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"harrys-team/backend/internal/datastore"
	"harrys-team/backend/internal/objectstore"
	"harrys-team/backend/internal/response"
)

func (h *Handler) ListTeamMembers(c *gin.Context) {
	members, err := h.store.ListTeamMembers(c.Request.Context(), false)
	if err != nil {
		h.internalError(c, "failed to list team members", err)
		return
	}
	response.Data(c, http.StatusOK, members)
}

func (h *Handler) GetTeamMember(c *gin.Context) {
	id, ok := intID(c, "team member")
	if !ok {
		return
	}
	m, err := h.store.GetTeamMember(c.Request.Context(), id)
	if errors.Is(err, datastore.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Team member not found")
		return
	}
	if err != nil {
		h.internalError(c, "failed to get team member", err)
		return
	}
	response.Data(c, http.StatusOK, m)
}

// teamMemberInput reads the form fields shared by create and update. The
// social links arrive as separate twitter/linkedin/facebook fields.
func teamMemberInput(c *gin.Context) (datastore.TeamMemberInput, bool) {
	in := datastore.TeamMemberInput{
		Name:     c.PostForm("name"),
		Position: c.PostForm("position"),
		Bio:      c.PostForm("bio"),
		Email:    formOptional(c, "email"),
		Phone:    formOptional(c, "phone"),
		SocialLinks: datastore.SocialLinks{
			Twitter:  c.PostForm("twitter"),
			LinkedIn: c.PostForm("linkedin"),
			Facebook: c.PostForm("facebook"),
		},
		IsActive: formBool(c, "isActive"),
	}
	if in.Name == "" || in.Position == "" || in.Bio == "" {
		response.Error(c, http.StatusBadRequest, "Name, position, and bio are required")
		return in, false
	}
	return in, true
}

// CreateTeamMember inserts a team member with an optional photo.
func (h *Handler) CreateTeamMember(c *gin.Context) {
	if !parseForm(c) {
		return
	}
	in, ok := teamMemberInput(c)
	if !ok {
		return
	}
	if fh := formFile(c, "photo"); fh != nil {
		url, ok := h.storeUpload(c, objectstore.TeamPhotos, fh)
		if !ok {
			return
		}
		in.PhotoURL = url
	}

	m, err := h.store.CreateTeamMember(c.Request.Context(), in)
	if err != nil {
		h.discardUpload(c.Request.Context(), in.PhotoURL)
		h.internalError(c, "failed to create team member", err)
		return
	}
	h.logger.Info("team member created", zap.Int("id", m.ID))
	response.Data(c, http.StatusCreated, m)
}

// UpdateTeamMember overwrites the row. Without a new photo the stored one is
// kept.
func (h *Handler) UpdateTeamMember(c *gin.Context) {
	id, ok := intID(c, "team member")
	if !ok {
		return
	}
	if !parseForm(c) {
		return
	}
	in, ok := teamMemberInput(c)
	if !ok {
		return
	}
	if fh := formFile(c, "photo"); fh != nil {
		url, ok := h.storeUpload(c, objectstore.TeamPhotos, fh)
		if !ok {
			return
		}
		in.PhotoURL = url
	}

	m, err := h.store.UpdateTeamMember(c.Request.Context(), id, in)
	if err != nil {
		h.discardUpload(c.Request.Context(), in.PhotoURL)
		if errors.Is(err, datastore.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "Team member not found")
			return
		}
		h.internalError(c, "failed to update team member", err)
		return
	}
	response.Data(c, http.StatusOK, m)
}

func (h *Handler) DeleteTeamMember(c *gin.Context) {
	id, ok := intID(c, "team member")
	if !ok {
		return
	}
	url, err := h.store.DeleteTeamMember(c.Request.Context(), id)
	if errors.Is(err, datastore.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Team member not found")
		return
	}
	if err != nil {
		h.internalError(c, "failed to delete team member", err)
		return
	}
	h.removeFile(c.Request.Context(), url)
	response.Message(c, http.StatusOK, "Team member deleted successfully")
}
