package catalog

import (
	"context"
	"fmt"

	"clyst/marketplace-service/internal/model"
	"clyst/marketplace-service/internal/search"
)

// EventPostLiked is published whenever a post's like state flips.
const EventPostLiked = "EVENT_POST_LIKED"

// postColumns maps the search filter onto the posts listing query. Posts have
// no price, so a priced query simply narrows to its keywords.
var postColumns = search.FilterColumns{
	Title:       "p.post_title",
	Description: "p.description",
	Artist:      "u.name",
}

// CreatePostRequest is the decoded body of POST /posts. Owners may mark a
// post as promoted at creation time; promoted posts sort first in the feed.
type CreatePostRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	MediaURL    string `json:"mediaUrl" validate:"required,url"`
	IsPromoted  bool   `json:"isPromoted"`
}

// CommentRequest is the decoded body of the comment endpoints.
type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// ─── Listing ─────────────────────────────────────────────────────────────────

// ListPosts returns the feed, newest first. A non-empty rawQuery is run
// through the query interpreter and its keywords narrow the feed.
func (s *Service) ListPosts(ctx context.Context, rawQuery string) ([]model.Post, error) {
	q := `SELECT p.id, p.artist_id, COALESCE(u.name, ''), p.post_title,
	             COALESCE(p.description, ''), p.media_url, p.is_promoted, p.created_at
	      FROM posts p JOIN users u ON u.id = p.artist_id
	      WHERE 1=1`
	var args []any

	if rawQuery != "" {
		parsed := search.Parse(rawQuery)
		countQuery("posts", parsed.HasPrice())
		where, whereArgs := parsed.WhereSQL(postColumns, 1)
		q += where
		args = whereArgs
	}
	q += " ORDER BY p.is_promoted DESC, p.created_at DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	ids := []int64{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.ArtistID, &p.ArtistName, &p.Title,
			&p.Description, &p.MediaURL, &p.IsPromoted, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Comments = []model.Comment{}
		posts = append(posts, p)
		ids = append(ids, p.ID)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(posts) == 0 {
		return posts, nil
	}

	if err := s.attachPostComments(ctx, posts, ids); err != nil {
		return nil, err
	}
	if err := s.attachLikeCounts(ctx, posts, ids); err != nil {
		return nil, err
	}
	return posts, nil
}

// postsByArtist lists a single user's posts for their public profile.
func (s *Service) postsByArtist(ctx context.Context, artistID int64) ([]model.Post, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, p.artist_id, COALESCE(u.name, ''), p.post_title,
		        COALESCE(p.description, ''), p.media_url, p.is_promoted, p.created_at
		 FROM posts p JOIN users u ON u.id = p.artist_id
		 WHERE p.artist_id = $1
		 ORDER BY p.created_at DESC`,
		artistID)
	if err != nil {
		return nil, fmt.Errorf("posts by artist: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.ArtistID, &p.ArtistName, &p.Title,
			&p.Description, &p.MediaURL, &p.IsPromoted, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Comments = []model.Comment{}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// attachPostComments loads the comments of every listed post in one query.
func (s *Service) attachPostComments(ctx context.Context, posts []model.Post, ids []int64) error {
	rows, err := s.pool.Query(ctx,
		`SELECT c.post_id, c.id, c.user_id, COALESCE(u.name, ''), c.content, c.created_at
		 FROM post_comments c JOIN users u ON u.id = c.user_id
		 WHERE c.post_id = ANY($1)
		 ORDER BY c.created_at ASC`,
		ids)
	if err != nil {
		return fmt.Errorf("load post comments: %w", err)
	}
	defer rows.Close()

	byPost := map[int64][]model.Comment{}
	for rows.Next() {
		var postID int64
		var c model.Comment
		if err := rows.Scan(&postID, &c.ID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		byPost[postID] = append(byPost[postID], c)
	}
	if rows.Err() != nil {
		return rows.Err()
	}

	for i := range posts {
		if cs, ok := byPost[posts[i].ID]; ok {
			posts[i].Comments = cs
		}
	}
	return nil
}

// attachLikeCounts loads the like totals of every listed post in one query.
func (s *Service) attachLikeCounts(ctx context.Context, posts []model.Post, ids []int64) error {
	rows, err := s.pool.Query(ctx,
		`SELECT post_id, COUNT(*) FROM post_likes WHERE post_id = ANY($1) GROUP BY post_id`,
		ids)
	if err != nil {
		return fmt.Errorf("load like counts: %w", err)
	}
	defer rows.Close()

	counts := map[int64]int{}
	for rows.Next() {
		var postID int64
		var n int
		if err := rows.Scan(&postID, &n); err != nil {
			return fmt.Errorf("scan like count: %w", err)
		}
		counts[postID] = n
	}
	if rows.Err() != nil {
		return rows.Err()
	}

	for i := range posts {
		posts[i].LikeCount = counts[posts[i].ID]
	}
	return nil
}

// ─── Mutations ───────────────────────────────────────────────────────────────

// CreatePost inserts a new feed post owned by userID.
func (s *Service) CreatePost(ctx context.Context, userID int64, req CreatePostRequest) (*model.Post, error) {
	var p model.Post
	err := s.pool.QueryRow(ctx,
		`INSERT INTO posts (artist_id, post_title, description, media_url, is_promoted)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, artist_id, post_title, COALESCE(description, ''), media_url, is_promoted, created_at`,
		userID, req.Title, req.Description, req.MediaURL, req.IsPromoted,
	).Scan(&p.ID, &p.ArtistID, &p.Title, &p.Description, &p.MediaURL, &p.IsPromoted, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	p.Comments = []model.Comment{}
	return &p, nil
}

// DeletePost removes a post. Only the owner or an admin may delete; likes and
// comments go with it.
func (s *Service) DeletePost(ctx context.Context, userID, postID int64, isAdmin bool) error {
	var artistID int64
	err := s.pool.QueryRow(ctx, `SELECT artist_id FROM posts WHERE id = $1`, postID).Scan(&artistID)
	if err != nil {
		return ErrNotFound
	}
	if artistID != userID && !isAdmin {
		return ErrForbidden
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM post_comments WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return tx.Commit(ctx)
}

// AddPostComment attaches a comment to a post.
func (s *Service) AddPostComment(ctx context.Context, userID, postID int64, content string) (*model.Comment, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	var c model.Comment
	err := s.pool.QueryRow(ctx,
		`INSERT INTO post_comments (post_id, user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, content, created_at`,
		postID, userID, content,
	).Scan(&c.ID, &c.AuthorID, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	_ = s.pool.QueryRow(ctx, `SELECT COALESCE(name, '') FROM users WHERE id = $1`, userID).Scan(&c.AuthorName)
	return &c, nil
}

// DeletePostComment removes a comment. Only its author or an admin may delete.
func (s *Service) DeletePostComment(ctx context.Context, userID, commentID int64, isAdmin bool) error {
	var authorID int64
	err := s.pool.QueryRow(ctx, `SELECT user_id FROM post_comments WHERE id = $1`, commentID).Scan(&authorID)
	if err != nil {
		return ErrNotFound
	}
	if authorID != userID && !isAdmin {
		return ErrForbidden
	}
	_, err = s.pool.Exec(ctx, `DELETE FROM post_comments WHERE id = $1`, commentID)
	return err
}

// ToggleLike flips the caller's like on a post and returns the new state and
// total. The flip is announced on pub/sub so the analytics worker can react.
func (s *Service) ToggleLike(ctx context.Context, userID, postID int64) (liked bool, count int, err error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return false, 0, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return false, 0, ErrNotFound
	}

	var hasLike bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)`,
		postID, userID).Scan(&hasLike); err != nil {
		return false, 0, fmt.Errorf("check like: %w", err)
	}

	if hasLike {
		_, err = s.pool.Exec(ctx,
			`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	} else {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	}
	if err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}

	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("count likes: %w", err)
	}

	s.publish(ctx, EventPostLiked, map[string]any{
		"postId": postID,
		"userId": userID,
		"liked":  !hasLike,
		"count":  count,
	})
	return !hasLike, count, nil
}

// Likes returns the like total of a post and whether the caller liked it.
// userID <= 0 means an anonymous caller: the total is served with liked=false.
func (s *Service) Likes(ctx context.Context, userID, postID int64) (count int, liked bool, err error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return 0, false, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return 0, false, ErrNotFound
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return 0, false, fmt.Errorf("count likes: %w", err)
	}
	if userID <= 0 {
		return count, false, nil
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)`,
		postID, userID).Scan(&liked); err != nil {
		return 0, false, fmt.Errorf("check like: %w", err)
	}
	return count, liked, nil
}
