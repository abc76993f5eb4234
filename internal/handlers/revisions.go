package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shulsite/api/internal/models"
)

type revisionResponse struct {
	ID            int64     `json:"id"`
	ContentKey    string    `json:"contentKey"`
	OldValue      *string   `json:"oldValue,omitempty"`
	NewValue      string    `json:"newValue"`
	ContentType   string    `json:"contentType"`
	ChangedAt     time.Time `json:"changedAt"`
	ChangedByName *string   `json:"changedByName,omitempty"`
	ChangeType    string    `json:"changeType"`
}

func toRevisionResponses(revisions []models.ContentRevision) []revisionResponse {
	resp := make([]revisionResponse, 0, len(revisions))
	for _, rev := range revisions {
		resp = append(resp, revisionResponse{
			ID:            rev.ID,
			ContentKey:    rev.ContentKey,
			OldValue:      rev.OldValue,
			NewValue:      rev.NewValue,
			ContentType:   string(rev.ContentType),
			ChangedAt:     rev.ChangedAt,
			ChangedByName: rev.ChangedByName,
			ChangeType:    string(rev.ChangeType),
		})
	}
	return resp
}

func (h HandlerSet) RecentRevisions(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	revisions, err := h.revisions.Recent(c.Request.Context(), limitQuery(c, 50))
	if err != nil {
		h.log.Error().Err(err).Msg("recent revisions")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"revisions": toRevisionResponses(revisions)})
}

func (h HandlerSet) RevisionHistory(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	key := contentKeyParam(c)
	revisions, err := h.revisions.HistoryForKey(c.Request.Context(), key, limitQuery(c, 20))
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("revision history")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"revisions": toRevisionResponses(revisions)})
}

func limitQuery(c *gin.Context, fallback int) int {
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			return v
		}
	}
	return fallback
}
