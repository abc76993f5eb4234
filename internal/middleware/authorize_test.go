package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"shulsite/api/internal/models"
)

func newRoleRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	attach := func(c *gin.Context) {
		if user != nil {
			c.Set(ContextUser, *user)
		}
		c.Next()
	}

	router.GET("/users", attach, RequireRoles(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want int
	}{
		{"admin allowed", &models.User{ID: "u1", Role: models.UserRoleAdmin}, http.StatusOK},
		{"editor forbidden", &models.User{ID: "u2", Role: models.UserRoleEditor}, http.StatusForbidden},
		{"no identity", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			newRoleRouter(tt.user).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
