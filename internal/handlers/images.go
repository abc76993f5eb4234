package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shulsite/api/internal/middleware"
	"shulsite/api/internal/models"
	"shulsite/api/internal/repository"
	"shulsite/api/internal/service"
)

type imageResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	AltText    *string   `json:"altText,omitempty"`
	SizeBytes  int64     `json:"sizeBytes"`
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toImageResponse(image models.ImageRecord) imageResponse {
	return imageResponse{
		ID:         image.ID,
		Filename:   image.Filename,
		URL:        "/api/v1/images/serve/" + image.ObjectKey,
		AltText:    image.AltText,
		SizeBytes:  image.SizeBytes,
		MimeType:   image.MimeType,
		UploadedAt: image.UploadedAt,
	}
}

func (h HandlerSet) UploadImage(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}
	if h.uploads == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage_unavailable"})
		return
	}

	user, _ := middleware.CurrentUser(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	image, err := h.uploads.Upload(c.Request.Context(), service.UploadInput{
		User:    user,
		File:    file,
		Header:  header,
		AltText: c.PostForm("altText"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "file_too_large"})
		case errors.Is(err, service.ErrUnsupportedType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_type"})
		default:
			h.log.Error().Err(err).Msg("upload image")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upload_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"image": toImageResponse(image)})
}

func (h HandlerSet) ListImages(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	images, err := h.images.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list images")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	resp := make([]imageResponse, 0, len(images))
	for _, image := range images {
		resp = append(resp, toImageResponse(image))
	}
	c.JSON(http.StatusOK, gin.H{"images": resp})
}

func (h HandlerSet) GetImage(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	image, err := h.images.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get image")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image": toImageResponse(image)})
}

type updateImageRequest struct {
	AltText *string `json:"altText" binding:"required"`
}

func (h HandlerSet) UpdateImageAlt(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	var req updateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	if err := h.images.UpdateAltText(c.Request.Context(), c.Param("id"), *req.AltText); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("update image alt text")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteImage(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	objectKey, err := h.images.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("delete image")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	if h.store != nil {
		if err := h.store.Remove(c.Request.Context(), objectKey); err != nil {
			h.log.Error().Err(err).Str("object_key", objectKey).Msg("remove image object")
		}
	}

	c.Status(http.StatusNoContent)
}

// ServeImage streams an object straight from the store. Uploaded keys
// are immutable, so aggressive caching is safe.
func (h HandlerSet) ServeImage(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage_unavailable"})
		return
	}

	objectKey := strings.TrimPrefix(c.Param("key"), "/")
	if objectKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key_required"})
		return
	}

	reader, info, err := h.store.Get(c.Request.Context(), objectKey)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image_not_found"})
		return
	}
	defer reader.Close()

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("ETag", info.ETag)
	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, reader, nil)
}
