package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shulsite/api/internal/middleware"
	"shulsite/api/internal/models"
	"shulsite/api/internal/service"
)

type loginRequest struct {
	PIN string `json:"pin" binding:"required"`
}

type userResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}

func (h HandlerSet) Login(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid PIN format"})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.PIN, c.ClientIP())
	if err != nil {
		h.rejectLogin(c, err)
		return
	}

	secure := h.cfg.IsProduction()
	c.SetSameSite(http.SameSiteStrictMode)

	sessionMaxAge := int(time.Until(result.SessionExpiry).Seconds())
	csrfMaxAge := int(time.Until(result.CSRFExpiry).Seconds())

	c.SetCookie(middleware.SessionCookie, result.SessionID, sessionMaxAge, "/", "", secure, true)
	c.SetCookie(middleware.AuthIndicatorCookie, "1", sessionMaxAge, "/", "", secure, false)
	c.SetCookie(middleware.CSRFCookie, result.CSRFToken, csrfMaxAge, "/", "", secure, false)

	c.JSON(http.StatusOK, gin.H{
		"user": toUserResponse(result.User),
	})
}

func (h HandlerSet) rejectLogin(c *gin.Context, err error) {
	var lockout *service.LockoutError
	var failed *service.FailedLoginError

	switch {
	case errors.Is(err, service.ErrInvalidPINFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid PIN format"})
	case errors.As(err, &lockout):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":            lockout.Error(),
			"locked":           true,
			"remainingSeconds": lockout.RemainingSeconds,
		})
	case errors.As(err, &failed):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             failed.Error(),
			"locked":            failed.Locked,
			"attemptsRemaining": failed.AttemptsRemaining,
		})
	default:
		h.log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
	}
}

// Logout is idempotent: it always clears the cookies, even when no
// session existed or the database is away.
func (h HandlerSet) Logout(c *gin.Context) {
	sessionID, _ := c.Cookie(middleware.SessionCookie)

	if h.auth != nil && sessionID != "" {
		if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
			h.log.Error().Err(err).Msg("logout cleanup failed")
		}
	}

	secure := h.cfg.IsProduction()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", secure, true)
	c.SetCookie(middleware.AuthIndicatorCookie, "", -1, "/", "", secure, false)
	c.SetCookie(middleware.CSRFCookie, "", -1, "/", "", secure, false)

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": toUserResponse(user),
	})
}
