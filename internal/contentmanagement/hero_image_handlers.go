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

// ListHeroImages lists every hero image, active or not, by position.
func (h *Handler) ListHeroImages(c *gin.Context) {
	images, err := h.store.ListHeroImages(c.Request.Context(), false)
	if err != nil {
		h.internalError(c, "failed to list hero images", err)
		return
	}
	response.Data(c, http.StatusOK, images)
}

func (h *Handler) GetHeroImage(c *gin.Context) {
	id, ok := intID(c, "hero image")
	if !ok {
		return
	}
	img, err := h.store.GetHeroImage(c.Request.Context(), id)
	if errors.Is(err, datastore.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Hero image not found")
		return
	}
	if err != nil {
		h.internalError(c, "failed to get hero image", err)
		return
	}
	response.Data(c, http.StatusOK, img)
}

// heroImageInput reads the form fields of a create or update request.
func heroImageInput(c *gin.Context) datastore.HeroImageInput {
	return datastore.HeroImageInput{
		Title:    formOptional(c, "title"),
		AltText:  c.PostForm("altText"),
		Caption:  formOptional(c, "caption"),
		Position: formInt(c, "position"),
		IsActive: formBool(c, "isActive"),
	}
}

// CreateHeroImage stores the uploaded image and inserts its row.
func (h *Handler) CreateHeroImage(c *gin.Context) {
	if !parseForm(c) {
		return
	}
	in := heroImageInput(c)
	if in.AltText == "" {
		response.Error(c, http.StatusBadRequest, "Alt text is required")
		return
	}
	fh := formFile(c, "image")
	if fh == nil {
		response.Error(c, http.StatusBadRequest, "Image file is required")
		return
	}

	url, ok := h.storeUpload(c, objectstore.HeroImages, fh)
	if !ok {
		return
	}
	in.ImageURL = url

	img, err := h.store.CreateHeroImage(c.Request.Context(), in)
	if err != nil {
		h.discardUpload(c.Request.Context(), url)
		h.internalError(c, "failed to create hero image", err)
		return
	}
	h.logger.Info("hero image created", zap.Int("id", img.ID), zap.String("url", img.ImageURL))
	response.Data(c, http.StatusCreated, img)
}

// UpdateHeroImage overwrites the row. Without a new file the stored image is
// kept.
func (h *Handler) UpdateHeroImage(c *gin.Context) {
	id, ok := intID(c, "hero image")
	if !ok {
		return
	}
	if !parseForm(c) {
		return
	}
	in := heroImageInput(c)
	if in.AltText == "" {
		response.Error(c, http.StatusBadRequest, "Alt text is required")
		return
	}
	if fh := formFile(c, "image"); fh != nil {
		url, ok := h.storeUpload(c, objectstore.HeroImages, fh)
		if !ok {
			return
		}
		in.ImageURL = url
	}

	img, err := h.store.UpdateHeroImage(c.Request.Context(), id, in)
	if err != nil {
		h.discardUpload(c.Request.Context(), in.ImageURL)
		if errors.Is(err, datastore.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "Hero image not found")
			return
		}
		h.internalError(c, "failed to update hero image", err)
		return
	}
	response.Data(c, http.StatusOK, img)
}

// DeleteHeroImage deletes the row, then its file.
func (h *Handler) DeleteHeroImage(c *gin.Context) {
	id, ok := intID(c, "hero image")
	if !ok {
		return
	}
	url, err := h.store.DeleteHeroImage(c.Request.Context(), id)
	if errors.Is(err, datastore.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Hero image not found")
		return
	}
	if err != nil {
		h.internalError(c, "failed to delete hero image", err)
		return
	}
	h.removeFile(c.Request.Context(), url)
	response.Message(c, http.StatusOK, "Hero image deleted successfully")
}
