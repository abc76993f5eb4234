package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const CSRFHeader = "X-CSRF-Token"

type CSRFValidator interface {
	ValidateCSRF(ctx context.Context, token string, sessionID string) (bool, error)
}

// CSRF guards state-changing requests. The token travels out in a
// script-readable cookie and must come back in a custom header: a
// cross-site form can send the cookie but cannot read it, so it can
// never echo the header. Missing and invalid tokens are reported
// distinctly for diagnostics.
func CSRF(validator CSRFValidator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if validator == nil {
			c.Next()
			return
		}

		token := c.GetHeader(CSRFHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "csrf_token_missing"})
			return
		}

		sessionID := c.GetString(ContextSessionID)

		ok, err := validator.ValidateCSRF(c.Request.Context(), token, sessionID)
		if err != nil {
			log.Error().Err(err).Msg("csrf validation failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "csrf_token_invalid"})
			return
		}

		c.Next()
	}
}
