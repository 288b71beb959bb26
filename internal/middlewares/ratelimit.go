package middlewares

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/Adnan-Sarkar/course-review-backend/internal/metrics"
)

// counterStore 抽象 Redis 的 INCR/EXPIRE 能力，便于测试替换。
type counterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit 返回一个使用 Redis INCR+TTL 的限流中间件。
// keyFn 用于构建请求者唯一键（如按 IP）。store 为 nil 时直接放行。
func RateLimit(store counterStore, prefix string, limit int, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || limit <= 0 {
			c.Next()
			return
		}
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}
		rkey := fmt.Sprintf("rl:%s:%s", prefix, key)
		// 第一次自增时同时设置 TTL 窗口
		cnt, err := store.Incr(c, rkey).Result()
		if err == nil && cnt == 1 {
			_ = store.Expire(c, rkey, window).Err()
		}
		if err == nil && cnt > int64(limit) {
			metrics.RateLimited.WithLabelValues(prefix).Inc()
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(429, gin.H{
				"success":      false,
				"message":      "Too many requests",
				"errorMessage": "rate limit exceeded, retry later",
			})
			return
		}
		c.Next()
	}
}
