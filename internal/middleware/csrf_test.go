package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubCSRFValidator struct {
	ok        bool
	err       error
	gotToken  string
	gotSessID string
}

func (s *stubCSRFValidator) ValidateCSRF(_ context.Context, token string, sessionID string) (bool, error) {
	s.gotToken = token
	s.gotSessID = sessionID
	return s.ok, s.err
}

func newCSRFRouter(validator CSRFValidator, sessionID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	attach := func(c *gin.Context) {
		if sessionID != "" {
			c.Set(ContextSessionID, sessionID)
		}
		c.Next()
	}

	handler := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	router.GET("/thing", attach, CSRF(validator, zerolog.Nop()), handler)
	router.POST("/thing", attach, CSRF(validator, zerolog.Nop()), handler)
	return router
}

func TestCSRFSkipsSafeMethods(t *testing.T) {
	validator := &stubCSRFValidator{}
	router := newCSRFRouter(validator, "sess1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/thing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, validator.gotToken)
}

func TestCSRFMissingHeader(t *testing.T) {
	router := newCSRFRouter(&stubCSRFValidator{ok: true}, "sess1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/thing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "csrf_token_missing")
}

func TestCSRFInvalidToken(t *testing.T) {
	validator := &stubCSRFValidator{ok: false}
	router := newCSRFRouter(validator, "sess1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/thing", nil)
	req.Header.Set(CSRFHeader, "bogus")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "csrf_token_invalid")
	assert.Equal(t, "bogus", validator.gotToken)
	assert.Equal(t, "sess1", validator.gotSessID)
}

func TestCSRFValidToken(t *testing.T) {
	router := newCSRFRouter(&stubCSRFValidator{ok: true}, "sess1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/thing", nil)
	req.Header.Set(CSRFHeader, "good")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCSRFStoreError(t *testing.T) {
	router := newCSRFRouter(&stubCSRFValidator{err: errors.New("db down")}, "sess1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/thing", nil)
	req.Header.Set(CSRFHeader, "token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCSRFDegradedMode(t *testing.T) {
	router := newCSRFRouter(nil, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/thing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
