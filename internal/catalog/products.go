package catalog

import (
	"context"
	"fmt"

	"clyst/marketplace-service/internal/model"
	"clyst/marketplace-service/internal/search"
)

// productColumns maps the search filter onto the product catalog query.
// Products carry a price, so both keyword and price conditions apply.
var productColumns = search.FilterColumns{
	Title:       "p.title",
	Description: "p.description",
	Artist:      "u.name",
	Price:       "p.price",
}

// CreateProductRequest is the decoded body of POST /products.
type CreateProductRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImgURL      string  `json:"imgUrl" validate:"required,url"`
}

// ─── Listing ─────────────────────────────────────────────────────────────────

// ListProducts returns the catalog, newest first. A non-empty rawQuery is run
// through the query interpreter: price phrases bound the price column, the
// remaining keywords narrow title, description and artist name.
func (s *Service) ListProducts(ctx context.Context, rawQuery string) ([]model.Product, error) {
	q := `SELECT p.id, p.artist_id, COALESCE(u.name, ''), p.title,
	             COALESCE(p.description, ''), p.price, p.img_url, p.is_promoted, p.created_at
	      FROM products p JOIN users u ON u.id = p.artist_id
	      WHERE 1=1`
	var args []any

	if rawQuery != "" {
		parsed := search.Parse(rawQuery)
		countQuery("products", parsed.HasPrice())
		where, whereArgs := parsed.WhereSQL(productColumns, 1)
		q += where
		args = whereArgs
	}
	q += " ORDER BY p.is_promoted DESC, p.created_at DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.ArtistID, &p.ArtistName, &p.Title,
			&p.Description, &p.Price, &p.ImgURL, &p.IsPromoted, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// productsByArtist lists a single user's products for their public profile.
func (s *Service) productsByArtist(ctx context.Context, artistID int64) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, p.artist_id, COALESCE(u.name, ''), p.title,
		        COALESCE(p.description, ''), p.price, p.img_url, p.is_promoted, p.created_at
		 FROM products p JOIN users u ON u.id = p.artist_id
		 WHERE p.artist_id = $1
		 ORDER BY p.created_at DESC`,
		artistID)
	if err != nil {
		return nil, fmt.Errorf("products by artist: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.ArtistID, &p.ArtistName, &p.Title,
			&p.Description, &p.Price, &p.ImgURL, &p.IsPromoted, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct returns one product with its comments.
func (s *Service) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	var p model.Product
	err := s.pool.QueryRow(ctx,
		`SELECT p.id, p.artist_id, COALESCE(u.name, ''), p.title,
		        COALESCE(p.description, ''), p.price, p.img_url, p.is_promoted, p.created_at
		 FROM products p JOIN users u ON u.id = p.artist_id
		 WHERE p.id = $1`,
		productID,
	).Scan(&p.ID, &p.ArtistID, &p.ArtistName, &p.Title,
		&p.Description, &p.Price, &p.ImgURL, &p.IsPromoted, &p.CreatedAt)
	if err != nil {
		return nil, ErrNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.user_id, COALESCE(u.name, ''), c.content, c.created_at
		 FROM product_comments c JOIN users u ON u.id = c.user_id
		 WHERE c.product_id = $1
		 ORDER BY c.created_at ASC`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("load product comments: %w", err)
	}
	defer rows.Close()

	p.Comments = []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		p.Comments = append(p.Comments, c)
	}
	return &p, rows.Err()
}

// ─── Mutations ───────────────────────────────────────────────────────────────

// CreateProduct inserts a new catalog listing owned by userID.
func (s *Service) CreateProduct(ctx context.Context, userID int64, req CreateProductRequest) (*model.Product, error) {
	var p model.Product
	err := s.pool.QueryRow(ctx,
		`INSERT INTO products (artist_id, title, description, price, img_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, artist_id, title, COALESCE(description, ''), price, img_url, is_promoted, created_at`,
		userID, req.Title, req.Description, req.Price, req.ImgURL,
	).Scan(&p.ID, &p.ArtistID, &p.Title, &p.Description, &p.Price, &p.ImgURL, &p.IsPromoted, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

// DeleteProduct removes a listing. Only the owner or an admin may delete.
// Cart lines pointing at it are removed; order item snapshots keep their copy
// of the data and only lose the live reference.
func (s *Service) DeleteProduct(ctx context.Context, userID, productID int64, isAdmin bool) error {
	var artistID int64
	err := s.pool.QueryRow(ctx, `SELECT artist_id FROM products WHERE id = $1`, productID).Scan(&artistID)
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

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete cart lines: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE order_items SET product_id = NULL WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("detach order items: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_comments WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return tx.Commit(ctx)
}

// PromoteProduct creates a promoted feed post from a product, reusing its
// title, description and image. Only the owner may promote.
func (s *Service) PromoteProduct(ctx context.Context, userID, productID int64) (*model.Post, error) {
	var artistID int64
	var title, description, imgURL string
	err := s.pool.QueryRow(ctx,
		`SELECT artist_id, title, COALESCE(description, ''), img_url FROM products WHERE id = $1`,
		productID,
	).Scan(&artistID, &title, &description, &imgURL)
	if err != nil {
		return nil, ErrNotFound
	}
	if artistID != userID {
		return nil, ErrForbidden
	}

	var p model.Post
	err = s.pool.QueryRow(ctx,
		`INSERT INTO posts (artist_id, post_title, description, media_url, is_promoted)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id, artist_id, post_title, COALESCE(description, ''), media_url, is_promoted, created_at`,
		userID, title, description, imgURL,
	).Scan(&p.ID, &p.ArtistID, &p.Title, &p.Description, &p.MediaURL, &p.IsPromoted, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("promote product: %w", err)
	}
	p.Comments = []model.Comment{}
	return &p, nil
}

// AddProductComment attaches a comment to a product.
func (s *Service) AddProductComment(ctx context.Context, userID, productID int64, content string) (*model.Comment, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	var c model.Comment
	err := s.pool.QueryRow(ctx,
		`INSERT INTO product_comments (product_id, user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, content, created_at`,
		productID, userID, content,
	).Scan(&c.ID, &c.AuthorID, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	_ = s.pool.QueryRow(ctx, `SELECT COALESCE(name, '') FROM users WHERE id = $1`, userID).Scan(&c.AuthorName)
	return &c, nil
}

// DeleteProductComment removes a comment. Only its author or an admin may delete.
func (s *Service) DeleteProductComment(ctx context.Context, userID, commentID int64, isAdmin bool) error {
	var authorID int64
	err := s.pool.QueryRow(ctx, `SELECT user_id FROM product_comments WHERE id = $1`, commentID).Scan(&authorID)
	if err != nil {
		return ErrNotFound
	}
	if authorID != userID && !isAdmin {
		return ErrForbidden
	}
	_, err = s.pool.Exec(ctx, `DELETE FROM product_comments WHERE id = $1`, commentID)
	return err
}
