package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-console/internal/adapter/http/middleware"
	redisStore "wallet-console/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitRouter(t *testing.T) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := redisStore.NewRateLimitStore(client, "")

	r := gin.New()
	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	r.POST("/auth/login", middleware.RateLimiter(store, "auth_login", rule, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"access_token": "t"})
	})
	return r, mr
}

func login(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router, _ := setupRateLimitRouter(t)

	for i := 0; i < 3; i++ {
		w := login(router, "10.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code, "request %d should succeed", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimitPerClient(t *testing.T) {
	router, _ := setupRateLimitRouter(t)

	for i := 0; i < 3; i++ {
		login(router, "10.0.0.1")
	}

	w := login(router, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Too many requests")

	assert.Equal(t, http.StatusOK, login(router, "10.0.0.2").Code, "other clients are unaffected")
}

func TestRateLimiter_DegradesWhenRedisIsDown(t *testing.T) {
	router, mr := setupRateLimitRouter(t)
	mr.Close()

	w := login(router, "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
