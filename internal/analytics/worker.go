// Package analytics computes the trending snapshot: the top posts and
// products scored by likes plus comments. A cron worker recomputes the
// snapshot periodically and caches it in Redis, where GET /trending reads it.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"clyst/marketplace-service/internal/metrics"
	"clyst/marketplace-service/internal/model"
)

// EventTrendingRefreshed is published after each snapshot recomputation.
const EventTrendingRefreshed = "EVENT_TRENDING_REFRESHED"

// snapshotKey is where the cached snapshot lives in Redis.
const snapshotKey = "trending:snapshot"

// ErrNoSnapshot is returned by LoadSnapshot before the first worker cycle.
var ErrNoSnapshot = fmt.Errorf("trending snapshot not computed yet")

// Worker recomputes the trending snapshot from the database.
type Worker struct {
	pool  *pgxpool.Pool
	rdb   *redis.Client
	limit int           // entries kept per listing kind
	ttl   time.Duration // cache expiry, sized to outlive the next cycle
}

// NewWorker constructs a Worker. The snapshot TTL is twice the refresh
// interval so a single failed cycle never leaves /trending empty.
func NewWorker(pool *pgxpool.Pool, rdb *redis.Client, limit, intervalHours int) *Worker {
	return &Worker{
		pool:  pool,
		rdb:   rdb,
		limit: limit,
		ttl:   time.Duration(intervalHours) * 2 * time.Hour,
	}
}

// Run executes one refresh cycle: score posts and products, cache the
// snapshot, announce it on pub/sub.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("[analytics] Trending refresh started — limit=%d per kind", w.limit)

	posts, err := w.topPosts(ctx)
	if err != nil {
		return fmt.Errorf("top posts: %w", err)
	}
	products, err := w.topProducts(ctx)
	if err != nil {
		return fmt.Errorf("top products: %w", err)
	}

	snap := model.TrendingSnapshot{
		GeneratedAt: time.Now().UTC(),
		Posts:       posts,
		Products:    products,
	}
	if err := CacheSnapshot(ctx, w.rdb, snap, w.ttl); err != nil {
		return fmt.Errorf("cache snapshot: %w", err)
	}

	payload, _ := json.Marshal(map[string]any{
		"generatedAt": snap.GeneratedAt,
		"posts":       len(posts),
		"products":    len(products),
	})
	if err := w.rdb.Publish(ctx, EventTrendingRefreshed, payload).Err(); err != nil {
		log.Printf("[analytics] Publish error: %v", err)
	} else {
		metrics.EventsPublished.WithLabelValues(EventTrendingRefreshed).Inc()
	}

	metrics.TrendingRefreshes.Inc()
	log.Printf("[analytics] Trending refresh done — posts=%d products=%d", len(posts), len(products))
	return nil
}

// topPosts scores posts by like count plus comment count.
func (w *Worker) topPosts(ctx context.Context) ([]model.TrendingEntry, error) {
	rows, err := w.pool.Query(ctx,
		`SELECT p.id, p.post_title, COALESCE(u.name, ''), p.media_url,
		        (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)
		      + (SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id) AS score
		 FROM posts p JOIN users u ON u.id = p.artist_id
		 ORDER BY score DESC, p.created_at DESC
		 LIMIT $1`,
		w.limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.TrendingEntry{}
	for rows.Next() {
		e := model.TrendingEntry{Kind: "post"}
		if err := rows.Scan(&e.ID, &e.Title, &e.ArtistName, &e.MediaURL, &e.Score); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// topProducts scores products by comment count. Products have no likes, so
// comments alone drive the score.
func (w *Worker) topProducts(ctx context.Context) ([]model.TrendingEntry, error) {
	rows, err := w.pool.Query(ctx,
		`SELECT p.id, p.title, COALESCE(u.name, ''), p.img_url, p.price,
		        (SELECT COUNT(*) FROM product_comments c WHERE c.product_id = p.id) AS score
		 FROM products p JOIN users u ON u.id = p.artist_id
		 ORDER BY score DESC, p.created_at DESC
		 LIMIT $1`,
		w.limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.TrendingEntry{}
	for rows.Next() {
		e := model.TrendingEntry{Kind: "product"}
		if err := rows.Scan(&e.ID, &e.Title, &e.ArtistName, &e.MediaURL, &e.Price, &e.Score); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CacheSnapshot writes the snapshot to Redis with the given TTL.
func CacheSnapshot(ctx context.Context, rdb *redis.Client, snap model.TrendingSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, snapshotKey, data, ttl).Err()
}

// LoadSnapshot reads the cached snapshot. Returns ErrNoSnapshot when the
// worker has not produced one yet (or the cache expired).
func LoadSnapshot(ctx context.Context, rdb *redis.Client) (*model.TrendingSnapshot, error) {
	data, err := rdb.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	var snap model.TrendingSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
