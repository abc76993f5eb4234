package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"shulsite/api/internal/models"
	"shulsite/api/internal/repository"
)

// Cookie names shared by the auth handlers and the gate.
const (
	SessionCookie       = "shul_session"
	AuthIndicatorCookie = "shul_auth"
	CSRFCookie          = "shul_csrf"
)

// Context keys set by the gate for downstream handlers.
const (
	ContextUser      = "current_user"
	ContextSessionID = "session_id"
)

// SessionValidator resolves a session id to its user. A missing or
// expired session is reported as repository.ErrSessionNotFound; any
// other error means the backing store failed.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (models.User, error)
}

// Session is the access gate for the admin area. A nil validator means
// the process was started without a database; that is allowed only in
// development, where the gate degrades to allow-through with a warning.
// Production config refuses to start in that state.
func Session(validator SessionValidator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator == nil {
			log.Warn().
				Str("path", c.Request.URL.Path).
				Msg("database not available - auth check skipped")
			c.Next()
			return
		}

		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
			return
		}

		user, err := validator.ValidateSession(c.Request.Context(), sessionID)
		if err != nil {
			// A store failure is not "you are logged out": answering 401
			// here would wipe every admin's session client-side over a
			// transient database blip.
			if !errors.Is(err, repository.ErrSessionNotFound) {
				log.Error().Err(err).Msg("session lookup failed")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextSessionID, sessionID)

		c.Next()
	}
}

// CurrentUser pulls the identity the gate attached to the request.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(ContextUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
