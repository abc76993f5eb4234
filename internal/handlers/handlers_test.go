package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shulsite/api/internal/config"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "development",
		Security: config.SecurityConfig{
			SessionTTL:       7 * 24 * time.Hour,
			CSRFTokenTTL:     24 * time.Hour,
			MaxLoginAttempts: 5,
			AttemptWindow:    time.Hour,
			LockoutDuration:  15 * time.Minute,
		},
		Calendar: config.CalendarConfig{
			BaseURL:  "http://hebcal.invalid",
			Timezone: "America/Los_Angeles",
			CacheTTL: time.Hour,
		},
	}
}

// newDegradedRouter wires the full route table without a database,
// redis, or object store, the way a bare development start runs.
func newDegradedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandlerSet(zerolog.Nop(), nil, nil, nil, testConfig())

	router := gin.New()
	h.Register(router.Group("/api"))
	return router
}

func TestHealthWithoutBackends(t *testing.T) {
	router := newDegradedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"database":"absent"`)
	assert.Contains(t, body, `"cache":"absent"`)
	assert.Contains(t, body, `"storage":"absent"`)
}

func TestDataEndpointsRefuseWithoutDatabase(t *testing.T) {
	router := newDegradedRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/content"},
		{http.MethodGet, "/api/v1/pages"},
		{http.MethodPost, "/api/v1/auth/login"},
		// The gate lets admin requests through in degraded mode, but the
		// data layer still refuses.
		{http.MethodGet, "/api/v1/admin/stats"},
		{http.MethodGet, "/api/v1/admin/revisions"},
	}

	for _, tt := range paths {
		var body *strings.Reader
		if tt.method == http.MethodPost {
			body = strings.NewReader(`{"pin":"123456"}`)
		} else {
			body = strings.NewReader("")
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.path, body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code, "%s %s", tt.method, tt.path)
		assert.Contains(t, w.Body.String(), "database_unavailable", "%s %s", tt.method, tt.path)
	}
}

func TestAdminUsersNeverDegrade(t *testing.T) {
	router := newDegradedRouter(t)

	// Role checks stay hard even when the session gate is bypassed: with
	// no identity attached the user admin area answers 401, not 503.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutWorksWithoutDatabase(t *testing.T) {
	router := newDegradedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)

	// Cookies are cleared regardless.
	cookies := w.Result().Cookies()
	names := make(map[string]int)
	for _, cookie := range cookies {
		names[cookie.Name] = cookie.MaxAge
	}
	assert.Contains(t, names, "shul_session")
	assert.Contains(t, names, "shul_auth")
	assert.Contains(t, names, "shul_csrf")
	for name, maxAge := range names {
		assert.Negative(t, maxAge, "cookie %s should expire", name)
	}
}

func TestServeImageWithoutStore(t *testing.T) {
	router := newDegradedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/images/serve/uploads/x.png", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "storage_unavailable")
}
