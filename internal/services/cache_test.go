package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/Adnan-Sarkar/course-review-backend/internal/storage"
)

type memoryCacheStore struct {
	data map[string]string
}

func (m *memoryCacheStore) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := m.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *memoryCacheStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if m.data == nil {
		m.data = make(map[string]string)
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryCacheStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestBestCourseCacheRoundTrip(t *testing.T) {
	store := &memoryCacheStore{}
	cache := NewBestCourseCache(store, time.Minute)
	require.NotNil(t, cache)

	_, ok := cache.Get(context.Background())
	require.False(t, ok)

	best := &storage.BestCourse{
		Course:        storage.Course{Title: "Go in Practice"},
		AverageRating: 4.5,
		ReviewCount:   2,
	}
	cache.Set(context.Background(), best)

	got, ok := cache.Get(context.Background())
	require.True(t, ok)
	require.Equal(t, best.Course.Title, got.Course.Title)
	require.Equal(t, best.AverageRating, got.AverageRating)
	require.Equal(t, best.ReviewCount, got.ReviewCount)
}

func TestBestCourseCacheInvalidate(t *testing.T) {
	store := &memoryCacheStore{}
	cache := NewBestCourseCache(store, time.Minute)
	cache.Set(context.Background(), &storage.BestCourse{AverageRating: 5})

	cache.Invalidate(context.Background())
	_, ok := cache.Get(context.Background())
	require.False(t, ok)
}

func TestBestCourseCacheDropsCorruptEntry(t *testing.T) {
	store := &memoryCacheStore{data: map[string]string{bestCourseCacheKey: "{not json"}}
	cache := NewBestCourseCache(store, time.Minute)

	_, ok := cache.Get(context.Background())
	require.False(t, ok)
	require.NotContains(t, store.data, bestCourseCacheKey)
}

func TestBestCourseCacheDisabled(t *testing.T) {
	// store 为 nil 时缓存整体禁用，所有操作都是空操作
	cache := NewBestCourseCache(nil, time.Minute)
	require.Nil(t, cache)
	cache.Set(context.Background(), &storage.BestCourse{})
	cache.Invalidate(context.Background())
	_, ok := cache.Get(context.Background())
	require.False(t, ok)
}

func TestBestCourseCacheEntryIsValidJSON(t *testing.T) {
	store := &memoryCacheStore{}
	cache := NewBestCourseCache(store, time.Minute)
	cache.Set(context.Background(), &storage.BestCourse{AverageRating: 4.25, ReviewCount: 8})

	var decoded storage.BestCourse
	require.NoError(t, json.Unmarshal([]byte(store.data[bestCourseCacheKey]), &decoded))
	require.Equal(t, 4.25, decoded.AverageRating)
}
