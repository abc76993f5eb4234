package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"shulsite/api/internal/middleware"
	"shulsite/api/internal/models"
	"shulsite/api/internal/repository"
)

type contentResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	ContentType string    `json:"contentType"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UpdatedBy   *string   `json:"updatedBy,omitempty"`
}

func toContentResponse(content models.SiteContent) contentResponse {
	return contentResponse{
		Key:         content.Key,
		Value:       content.Value,
		ContentType: string(content.ContentType),
		UpdatedAt:   content.UpdatedAt,
		UpdatedBy:   content.UpdatedBy,
	}
}

func (h HandlerSet) ListContent(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	items, err := h.content.ListByPrefix(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		h.log.Error().Err(err).Msg("list content")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	resp := make([]contentResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toContentResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"items": resp})
}

func (h HandlerSet) GetContent(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	key := contentKeyParam(c)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key_required"})
		return
	}

	content, err := h.content.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content_not_found"})
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("get content")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toContentResponse(content)})
}

type saveContentRequest struct {
	Key         string  `json:"key" binding:"required"`
	Value       *string `json:"value" binding:"required"`
	ContentType string  `json:"contentType"`
}

func (h HandlerSet) SaveContent(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	var req saveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	h.setContent(c, req.Key, *req.Value, req.ContentType)
}

type updateContentRequest struct {
	Value       *string `json:"value" binding:"required"`
	ContentType string  `json:"contentType"`
}

func (h HandlerSet) UpdateContent(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	key := contentKeyParam(c)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key_required"})
		return
	}

	var req updateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	h.setContent(c, key, *req.Value, req.ContentType)
}

func (h HandlerSet) setContent(c *gin.Context, key, value, contentType string) {
	ct := models.ContentType(contentType)
	switch ct {
	case models.ContentTypeText, models.ContentTypeHTML, models.ContentTypeJSON:
	case "":
		ct = models.ContentTypeText
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_content_type"})
		return
	}

	user, _ := middleware.CurrentUser(c)

	changeType, err := h.contentSvc.Set(c.Request.Context(), key, value, ct, user.ID)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("set content")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"changeType": string(changeType)})
}

func (h HandlerSet) DeleteContent(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	key := contentKeyParam(c)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key_required"})
		return
	}

	user, _ := middleware.CurrentUser(c)

	if err := h.contentSvc.Delete(c.Request.Context(), key, user.ID); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("delete content")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Content keys are dotted paths ("services.shabbat_morning") and arrive
// URL-encoded.
func contentKeyParam(c *gin.Context) string {
	key := c.Param("key")
	if decoded, err := url.PathUnescape(key); err == nil {
		return decoded
	}
	return key
}
