package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(2, 0)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
	assert.Equal(t, 0, tb.Remaining())
}

func TestClientRateLimiterIsPerClient(t *testing.T) {
	l := NewClientRateLimiter(RateLimiterConfig{RequestsPerMinute: 1, BurstSize: 1, CleanupInterval: time.Hour}, zap.NewNop())
	defer l.Stop()

	ok, _ := l.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.Allow("10.0.0.1")
	assert.False(t, ok)
	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok)

	assert.Equal(t, 0, l.cleanup(time.Now().Add(-time.Hour)))
	assert.Equal(t, 2, l.cleanup(time.Now().Add(time.Second)))
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok, "a dropped bucket starts full again")

	l.Stop()
	l.Stop()
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(zap.NewNop()))
	router.GET("/", func(c *gin.Context) {
		assert.NotNil(t, LoggerFrom(c))
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	const given = "6f1d3a9e-5c2b-4f7a-9d1e-2b3c4d5e6f70"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, given)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, given, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid", w.Header().Get(RequestIDHeader))
}
