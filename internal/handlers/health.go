package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports the status of each backing service. A missing database
// degrades the report but never fails the endpoint, so the dev setup
// without Postgres still answers.
func (h HandlerSet) Health(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus := "absent"
	if h.db != nil {
		dbStatus = "ok"
		if err := h.db.Ping(ctx); err != nil {
			dbStatus = "unreachable"
		}
	}

	cacheStatus := "absent"
	if h.cache != nil {
		cacheStatus = "ok"
		if err := h.cache.Ping(ctx).Err(); err != nil {
			cacheStatus = "unreachable"
		}
	}

	storageStatus := "absent"
	if h.store != nil {
		storageStatus = "ok"
	}

	status := http.StatusOK
	if dbStatus == "unreachable" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   "up",
		"database": dbStatus,
		"cache":    cacheStatus,
		"storage":  storageStatus,
	})
}
