package analytics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clyst/marketplace-service/internal/analytics"
	"clyst/marketplace-service/internal/model"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func sampleSnapshot() model.TrendingSnapshot {
	return model.TrendingSnapshot{
		GeneratedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Posts: []model.TrendingEntry{
			{ID: 7, Kind: "post", Title: "Sunset study", ArtistName: "Mira", MediaURL: "https://cdn.example/7.jpg", Score: 14},
		},
		Products: []model.TrendingEntry{
			{ID: 3, Kind: "product", Title: "Clay vase", ArtistName: "Ravi", Price: 1800, Score: 5},
		},
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()

	want := sampleSnapshot()
	require.NoError(t, analytics.CacheSnapshot(ctx, rdb, want, time.Hour))

	got, err := analytics.LoadSnapshot(ctx, rdb)
	require.NoError(t, err)
	assert.True(t, want.GeneratedAt.Equal(got.GeneratedAt))
	assert.Equal(t, want.Posts, got.Posts)
	assert.Equal(t, want.Products, got.Products)
}

func TestLoadSnapshot_Empty(t *testing.T) {
	rdb := testRedis(t)

	_, err := analytics.LoadSnapshot(context.Background(), rdb)
	assert.ErrorIs(t, err, analytics.ErrNoSnapshot)
}

func TestSnapshot_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	require.NoError(t, analytics.CacheSnapshot(ctx, rdb, sampleSnapshot(), time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := analytics.LoadSnapshot(ctx, rdb)
	assert.ErrorIs(t, err, analytics.ErrNoSnapshot)
}

func TestHandler_Trending(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()
	require.NoError(t, analytics.CacheSnapshot(ctx, rdb, sampleSnapshot(), time.Hour))

	mux := http.NewServeMux()
	analytics.NewHandler(rdb).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trending", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sunset study")
	assert.Contains(t, rec.Body.String(), "Clay vase")
}

func TestHandler_TrendingBeforeFirstCycle(t *testing.T) {
	rdb := testRedis(t)

	mux := http.NewServeMux()
	analytics.NewHandler(rdb).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trending", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
