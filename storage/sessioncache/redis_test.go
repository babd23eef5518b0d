package sessioncache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kitabu/core/cover"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	cache, err := NewRedisCache("redis://"+srv.Addr(), time.Hour)
	if err != nil {
		t.Fatalf("newTestCache() failed: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache, srv
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	cache, srv := newTestCache(t)

	sel := cover.CachedSelection{
		ThemeID:     "V3",
		ThemeLabel:  "Ocean World",
		ColourID:    "V3",
		ColourLabel: "V3",
		Status:      cover.StatusPreparing,
		UpdatedAt:   time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	}

	// miss
	_, ok, err := cache.Get(ctx, "sch1", cover.GradeNursery)
	assert.NoError(t, err)
	assert.False(t, ok)

	// put + get round trip
	assert.NoError(t, cache.Put(ctx, "sch1", cover.GradeNursery, sel))
	got, ok, err := cache.Get(ctx, "sch1", cover.GradeNursery)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sel, got)

	// entries are grade-scoped
	_, ok, err = cache.Get(ctx, "sch1", cover.GradeUKG)
	assert.NoError(t, err)
	assert.False(t, ok)

	// entries expire
	assert.True(t, srv.Exists("cover:sch1:nursery"))
	srv.FastForward(2 * time.Hour)
	_, ok, err = cache.Get(ctx, "sch1", cover.GradeNursery)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	assert.NoError(t, cache.Put(ctx, "sch1", cover.GradeNursery, cover.CachedSelection{ThemeID: "V1"}))
	assert.NoError(t, cache.Delete(ctx, "sch1", cover.GradeNursery))

	_, ok, err := cache.Get(ctx, "sch1", cover.GradeNursery)
	assert.NoError(t, err)
	assert.False(t, ok)

	// deleting a missing entry is a no-op
	assert.NoError(t, cache.Delete(ctx, "sch1", cover.GradeNursery))
}

func TestRedisCache_corruptEntry(t *testing.T) {
	ctx := context.Background()
	cache, srv := newTestCache(t)

	assert.NoError(t, srv.Set("cover:sch1:nursery", "not json"))
	_, ok, err := cache.Get(ctx, "sch1", cover.GradeNursery)
	assert.NoError(t, err)
	assert.False(t, ok)
}
