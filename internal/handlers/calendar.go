package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) Shabbat(c *gin.Context) {
	info, err := h.calendar.Shabbat(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("shabbat lookup")
		c.JSON(http.StatusBadGateway, gin.H{"error": "calendar_unavailable"})
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h HandlerSet) HebrewDate(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
			return
		}
		date = parsed
	}

	hdate, err := h.calendar.HebrewDateFor(c.Request.Context(), date)
	if err != nil {
		h.log.Error().Err(err).Msg("hebrew date lookup")
		c.JSON(http.StatusBadGateway, gin.H{"error": "calendar_unavailable"})
		return
	}

	c.JSON(http.StatusOK, hdate)
}
