package middleware

import (
	"net/http"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimitMiddleware_Basic(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 0, 3, time.Hour))
	r.GET("/api/blogs", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })

	// burst only: three requests per window
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, get(r, "/api/blogs"), "request %d", i)
	}
	require.Equal(t, http.StatusTooManyRequests, get(r, "/api/blogs"))

	keys := m.Keys()
	require.Len(t, keys, 1)
	require.Contains(t, keys[0], "rl:ip:")
	require.True(t, m.TTL(keys[0]) > 0)
}

func TestRedisRateLimitMiddleware_RedisDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	m.Close()

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 1, 0, time.Second))
	r.GET("/api/blogs", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })

	require.Equal(t, http.StatusInternalServerError, get(r, "/api/blogs"))
}

func TestRedisRateLimitMiddleware_NilClientFallsBack(t *testing.T) {
	r := gin.New()
	r.Use(RedisRateLimitMiddleware(nil, 0.5, 1, time.Second))
	r.GET("/api/blogs", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })

	require.Equal(t, http.StatusOK, get(r, "/api/blogs"))
	require.Equal(t, http.StatusTooManyRequests, get(r, "/api/blogs"))
}
