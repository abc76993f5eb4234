package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shulsite/api/internal/middleware"
	"shulsite/api/internal/models"
	"shulsite/api/internal/repository"
)

type pageResponse struct {
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	MetaDescription *string   `json:"metaDescription,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toPageResponse(page models.Page) pageResponse {
	return pageResponse{
		Slug:            page.Slug,
		Title:           page.Title,
		Content:         page.Content,
		MetaDescription: page.MetaDescription,
		UpdatedAt:       page.UpdatedAt,
	}
}

func (h HandlerSet) ListPages(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	pages, err := h.pages.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list pages")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	resp := make([]pageResponse, 0, len(pages))
	for _, page := range pages {
		resp = append(resp, toPageResponse(page))
	}
	c.JSON(http.StatusOK, gin.H{"pages": resp})
}

func (h HandlerSet) GetPage(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	page, err := h.pages.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "page_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get page")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": toPageResponse(page)})
}

type savePageRequest struct {
	Title           string  `json:"title" binding:"required"`
	Content         string  `json:"content" binding:"required"`
	MetaDescription *string `json:"metaDescription"`
}

func (h HandlerSet) SavePage(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	var req savePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	user, _ := middleware.CurrentUser(c)

	page := models.Page{
		Slug:            c.Param("slug"),
		Title:           req.Title,
		Content:         req.Content,
		MetaDescription: req.MetaDescription,
	}

	if err := h.pages.Save(c.Request.Context(), page, user.ID); err != nil {
		h.log.Error().Err(err).Str("slug", page.Slug).Msg("save page")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"slug": page.Slug})
}

func (h HandlerSet) DeletePage(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	if err := h.pages.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		h.log.Error().Err(err).Msg("delete page")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}
