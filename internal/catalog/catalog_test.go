package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clyst/marketplace-service/internal/catalog"
)

func testService(t *testing.T) (pgxmock.PgxPoolIface, *catalog.Service) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mock, catalog.NewService(mock, rdb)
}

func postRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "artist_id", "post_title", "description", "media_url", "is_promoted", "created_at",
	})
}

// ─── Promotion ───────────────────────────────────────────────────────────────

func TestCreatePost_PromotedFlag(t *testing.T) {
	mock, svc := testService(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs(int64(9), "Sunset study", "oil on canvas", "https://cdn.example/s.jpg", true).
		WillReturnRows(postRows().
			AddRow(int64(12), int64(9), "Sunset study", "oil on canvas", "https://cdn.example/s.jpg", true, now))

	p, err := svc.CreatePost(context.Background(), 9, catalog.CreatePostRequest{
		Title:       "Sunset study",
		Description: "oil on canvas",
		MediaURL:    "https://cdn.example/s.jpg",
		IsPromoted:  true,
	})
	require.NoError(t, err)
	assert.True(t, p.IsPromoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteProduct_Owner(t *testing.T) {
	mock, svc := testService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT artist_id, title, COALESCE\(description, ''\), img_url FROM products`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"artist_id", "title", "description", "img_url"}).
			AddRow(int64(9), "Clay vase", "hand thrown", "https://cdn.example/3.jpg"))
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs(int64(9), "Clay vase", "hand thrown", "https://cdn.example/3.jpg").
		WillReturnRows(postRows().
			AddRow(int64(21), int64(9), "Clay vase", "hand thrown", "https://cdn.example/3.jpg", true, now))

	p, err := svc.PromoteProduct(context.Background(), 9, 3)
	require.NoError(t, err)
	assert.True(t, p.IsPromoted)
	assert.Equal(t, "Clay vase", p.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteProduct_NotOwner(t *testing.T) {
	mock, svc := testService(t)

	mock.ExpectQuery(`SELECT artist_id, title, COALESCE\(description, ''\), img_url FROM products`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"artist_id", "title", "description", "img_url"}).
			AddRow(int64(9), "Clay vase", "hand thrown", "https://cdn.example/3.jpg"))

	_, err := svc.PromoteProduct(context.Background(), 4, 3)
	assert.ErrorIs(t, err, catalog.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteProduct_Route(t *testing.T) {
	mock, svc := testService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT artist_id, title, COALESCE\(description, ''\), img_url FROM products`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"artist_id", "title", "description", "img_url"}).
			AddRow(int64(9), "Clay vase", "hand thrown", "https://cdn.example/3.jpg"))
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs(int64(9), "Clay vase", "hand thrown", "https://cdn.example/3.jpg").
		WillReturnRows(postRows().
			AddRow(int64(21), int64(9), "Clay vase", "hand thrown", "https://cdn.example/3.jpg", true, now))

	mux := http.NewServeMux()
	catalog.NewHandler(svc, 1).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/products/3/promote", nil)
	req.Header.Set("x-user-id", "9")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isPromoted":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── Public like totals ──────────────────────────────────────────────────────

func TestLikes_AnonymousCaller(t *testing.T) {
	mock, svc := testService(t)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM posts`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM post_likes`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	mux := http.NewServeMux()
	catalog.NewHandler(svc, 1).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/7/likes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked": false, "count": 3}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikes_AuthenticatedCaller(t *testing.T) {
	mock, svc := testService(t)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM posts`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM post_likes`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM post_likes`).
		WithArgs(int64(7), int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	count, liked, err := svc.Likes(context.Background(), 9, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
