package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/Adnan-Sarkar/course-review-backend/internal/storage"
)

const bestCourseCacheKey = "cache:best_course"

// bestCourseStore 抽象所需的 Redis 能力，便于测试替换。
type bestCourseStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// BestCourseCache 以短 TTL 缓存最佳课程的聚合结果，评价写入时失效。
// 缓存只是旁路优化：任何 Redis 故障都静默降级为直查数据库。
type BestCourseCache struct {
	store bestCourseStore
	ttl   time.Duration
}

// NewBestCourseCache 构造缓存；store 为 nil 或 ttl<=0 时缓存整体禁用。
func NewBestCourseCache(store bestCourseStore, ttl time.Duration) *BestCourseCache {
	if store == nil || ttl <= 0 {
		return nil
	}
	return &BestCourseCache{store: store, ttl: ttl}
}

// Get 返回缓存的最佳课程；未命中或缓存禁用时 ok 为 false。
func (c *BestCourseCache) Get(ctx context.Context) (*storage.BestCourse, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.store.Get(ctx, bestCourseCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var best storage.BestCourse
	if err := json.Unmarshal(raw, &best); err != nil {
		log.WithError(err).Warn("drop undecodable best-course cache entry")
		c.Invalidate(ctx)
		return nil, false
	}
	return &best, true
}

// Set 写入缓存（尽力而为）。
func (c *BestCourseCache) Set(ctx context.Context, best *storage.BestCourse) {
	if c == nil || best == nil {
		return
	}
	raw, err := json.Marshal(best)
	if err != nil {
		return
	}
	_ = c.store.Set(ctx, bestCourseCacheKey, raw, c.ttl).Err()
}

// Invalidate 清除缓存条目（评价创建、课程更新后调用）。
func (c *BestCourseCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	_ = c.store.Del(ctx, bestCourseCacheKey).Err()
}
