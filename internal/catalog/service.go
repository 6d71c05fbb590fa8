// Package catalog contains the listing logic for the marketplace: the post
// feed, the product catalog, comments, likes and public artist profiles.
// Both listing kinds are searchable with the natural-language query
// interpreter (see internal/search).
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"clyst/marketplace-service/internal/metrics"
	"clyst/marketplace-service/internal/model"
)

// Querier is the subset of pgxpool.Pool the catalog queries need.
// Tests substitute a mock.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service encapsulates all catalog logic.
// It has no dependency on net/http — it can be used by any transport layer.
type Service struct {
	pool Querier
	rdb  *redis.Client
}

// NewService returns a configured Service.
func NewService(pool Querier, rdb *redis.Client) *Service {
	return &Service{pool: pool, rdb: rdb}
}

// ─── Profiles ────────────────────────────────────────────────────────────────

// Profile returns the public artist page: the user row plus everything they
// published.
func (s *Service) Profile(ctx context.Context, userID int64) (*model.Profile, error) {
	var p model.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, ''),
		        COALESCE(location, ''), is_verified, created_at
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&p.User.ID, &p.User.Name, &p.User.Email, &p.User.Phone,
		&p.User.Location, &p.User.IsVerified, &p.User.CreatedAt)
	if err != nil {
		return nil, ErrNotFound
	}

	posts, err := s.postsByArtist(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Posts = posts

	products, err := s.productsByArtist(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Products = products

	return &p, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// publish pushes a domain event to Redis pub/sub (non-fatal).
func (s *Service) publish(ctx context.Context, channel string, payload map[string]any) {
	event, _ := json.Marshal(payload)
	if err := s.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(channel).Inc()
}

// countQuery records a parsed search in the metrics, labelled by listing
// kind and by whether a price phrase was recognised.
func countQuery(target string, priced bool) {
	outcome := "keywords"
	if priced {
		outcome = "priced"
	}
	metrics.SearchQueries.WithLabelValues(target, outcome).Inc()
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when a listing, comment or user is missing.
var ErrNotFound = fmt.Errorf("not found")

// ErrForbidden is returned when the caller does not own the target resource.
var ErrForbidden = fmt.Errorf("forbidden")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
