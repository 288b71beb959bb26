package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

type memoryCounterStore struct {
	counts map[string]int64
}

func (m *memoryCounterStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	if m.counts == nil {
		m.counts = make(map[string]int64)
	}
	m.counts[key]++
	return redis.NewIntResult(m.counts[key], nil)
}

func (m *memoryCounterStore) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func newLimitedRouter(store counterStore, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/write", RateLimit(store, "write", limit, time.Minute, func(c *gin.Context) string {
		return "tester"
	}), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRateLimitAllowsUnderLimit(t *testing.T) {
	r := newLimitedRouter(&memoryCounterStore{}, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/write", nil))
		require.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	r := newLimitedRouter(&memoryCounterStore{}, 2)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/write", nil))
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	require.NotEmpty(t, last.Header().Get("Retry-After"))
}

func TestRateLimitDisabledWithoutStore(t *testing.T) {
	r := newLimitedRouter(nil, 1)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/write", nil))
		require.Equal(t, http.StatusCreated, w.Code)
	}
}
