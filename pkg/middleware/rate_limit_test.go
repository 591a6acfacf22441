package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func get(r http.Handler, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/api/blogs", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })

	require.Equal(t, http.StatusOK, get(r, "/api/blogs"))
	require.Equal(t, http.StatusOK, get(r, "/api/blogs"))

	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2, 1))
	r.GET("/api/blogs", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })

	require.Equal(t, http.StatusOK, get(r, "/api/blogs"))
	require.Equal(t, http.StatusTooManyRequests, get(r, "/api/blogs"))

	// one token is replenished every 500ms
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, get(r, "/api/blogs"))
}

func TestRateLimitMiddleware_KeysBySubject(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": c.Query("who")})
		c.Next()
	})
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/u", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/u?who=admin"))
	require.Equal(t, http.StatusTooManyRequests, get(r, "/u?who=admin"))
	// a different subject has its own bucket
	require.Equal(t, http.StatusOK, get(r, "/u?who=editor"))
}
