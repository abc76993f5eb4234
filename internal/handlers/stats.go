package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type activityResponse struct {
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h HandlerSet) Stats(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	ctx := c.Request.Context()

	contentCount, err := h.content.Count(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("count content")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}
	pageCount, err := h.pages.Count(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("count pages")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}
	imageCount, err := h.images.Count(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("count images")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	activity, err := h.content.RecentActivity(ctx, 10)
	if err != nil {
		h.log.Error().Err(err).Msg("recent activity")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	recent := make([]activityResponse, 0, len(activity))
	for _, entry := range activity {
		recent = append(recent, activityResponse{
			Type:      entry.Type,
			Key:       entry.Key,
			UpdatedAt: entry.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"contentCount":   contentCount,
		"pageCount":      pageCount,
		"imageCount":     imageCount,
		"recentActivity": recent,
	})
}
