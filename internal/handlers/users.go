package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shulsite/api/internal/ids"
	"shulsite/api/internal/middleware"
	"shulsite/api/internal/models"
	"shulsite/api/internal/repository"
	"shulsite/api/internal/security"
)

func (h HandlerSet) ListUsers(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list users")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

type createUserRequest struct {
	Name string `json:"name" binding:"required"`
	PIN  string `json:"pin" binding:"required"`
	Role string `json:"role"`
}

func (h HandlerSet) CreateUser(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	if !security.ValidPIN(req.PIN) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid PIN format"})
		return
	}

	role := models.UserRole(req.Role)
	switch role {
	case models.UserRoleAdmin, models.UserRoleEditor:
	case "":
		role = models.UserRoleEditor
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_role"})
		return
	}

	pinHash, err := security.HashPIN(req.PIN)
	if err != nil {
		h.log.Error().Err(err).Msg("hash pin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	user := models.User{
		ID:      ids.New(),
		Name:    req.Name,
		PINHash: pinHash,
		Role:    role,
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("create user")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

type updatePINRequest struct {
	PIN string `json:"pin" binding:"required"`
}

func (h HandlerSet) UpdateUserPIN(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	var req updatePINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	if !security.ValidPIN(req.PIN) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid PIN format"})
		return
	}

	pinHash, err := security.HashPIN(req.PIN)
	if err != nil {
		h.log.Error().Err(err).Msg("hash pin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	if err := h.users.UpdatePIN(c.Request.Context(), c.Param("id"), pinHash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("update pin")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}

	current, _ := middleware.CurrentUser(c)
	targetID := c.Param("id")
	if current.ID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot_delete_self"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("delete user")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}
