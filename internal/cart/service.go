// Package cart implements the per-user shopping cart.
//
// Each user owns at most one cart row; cart_items reference live products.
// Items whose product has been deleted are pruned the next time the cart is
// read, so totals never count dead rows.
package cart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"clyst/marketplace-service/internal/model"
)

// Service encapsulates all cart logic.
type Service struct {
	pool *pgxpool.Pool
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// ─── Business logic ───────────────────────────────────────────────────────────

// Get returns the user's cart with line totals, creating the cart row on
// first use and pruning items that reference deleted products.
func (s *Service) Get(ctx context.Context, userID int64) (*model.Cart, error) {
	cartID, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.pruneOrphans(ctx, cartID); err != nil {
		// Non-fatal: stale rows are excluded by the join below anyway.
		slog.Warn("cart prune failed", "cartId", cartID, "err", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT ci.item_id, p.id, p.title, p.img_url, p.price, ci.quantity, ci.added_at
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.item_id`,
		cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("cart query: %w", err)
	}
	defer rows.Close()

	cart := &model.Cart{Items: make([]model.CartItem, 0)}
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Title, &it.ImgURL, &it.UnitPrice, &it.Quantity, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("cart scan: %w", err)
		}
		it.LineTotal = float64(it.Quantity) * it.UnitPrice
		cart.TotalPrice += it.LineTotal
		cart.Items = append(cart.Items, it)
	}
	return cart, rows.Err()
}

// Add puts a product in the cart, incrementing the quantity when the
// product is already there.
func (s *Service) Add(ctx context.Context, userID, productID int64) error {
	// Verify the product still exists before touching the cart.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("cart add product lookup: %w", err)
	}
	if !exists {
		return ErrProductNotFound
	}

	cartID, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = quantity + 1
		 WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	)
	if err != nil {
		return fmt.Errorf("cart add increment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity, added_at)
			 VALUES ($1, $2, 1, NOW())`,
			cartID, productID,
		)
		if err != nil {
			return fmt.Errorf("cart add insert: %w", err)
		}
	}

	return s.touch(ctx, cartID)
}

// UpdateQuantity sets the quantity of a cart item the user owns.
// A quantity of zero or less removes the item.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	cartID, err := s.ownedCartForItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		_, err = s.pool.Exec(ctx, `DELETE FROM cart_items WHERE item_id = $1`, itemID)
	} else {
		_, err = s.pool.Exec(ctx,
			`UPDATE cart_items SET quantity = $1 WHERE item_id = $2`, quantity, itemID)
	}
	if err != nil {
		return fmt.Errorf("cart update item: %w", err)
	}
	return s.touch(ctx, cartID)
}

// Remove deletes one cart item the user owns.
func (s *Service) Remove(ctx context.Context, userID, itemID int64) error {
	cartID, err := s.ownedCartForItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("cart remove item: %w", err)
	}
	return s.touch(ctx, cartID)
}

// Clear empties the user's cart.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	cartID, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("cart clear: %w", err)
	}
	return s.touch(ctx, cartID)
}

// Count returns the summed quantity across the user's cart (for the navbar
// badge). A user without a cart has a count of zero.
func (s *Service) Count(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(ci.quantity), 0)
		 FROM cart_items ci
		 JOIN carts c ON c.cart_id = ci.cart_id
		 WHERE c.user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("cart count: %w", err)
	}
	return count, nil
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// getOrCreateCart returns the user's cart id, inserting the row on first use.
func (s *Service) getOrCreateCart(ctx context.Context, userID int64) (int64, error) {
	var cartID int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO carts (user_id, created_at, updated_at)
		 VALUES ($1, NOW(), NOW())
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING cart_id`,
		userID,
	).Scan(&cartID)
	if err != nil {
		return 0, fmt.Errorf("getOrCreateCart: %w", err)
	}
	return cartID, nil
}

// ownedCartForItem resolves the cart id for an item while validating that
// the item belongs to the given user.
func (s *Service) ownedCartForItem(ctx context.Context, userID, itemID int64) (int64, error) {
	var cartID int64
	err := s.pool.QueryRow(ctx,
		`SELECT c.cart_id
		 FROM cart_items ci
		 JOIN carts c ON c.cart_id = ci.cart_id
		 WHERE ci.item_id = $1 AND c.user_id = $2`,
		itemID, userID,
	).Scan(&cartID)
	if err != nil {
		return 0, ErrItemNotFound
	}
	return cartID, nil
}

// pruneOrphans drops cart rows whose product no longer exists.
func (s *Service) pruneOrphans(ctx context.Context, cartID int64) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM cart_items ci
		 WHERE ci.cart_id = $1
		   AND NOT EXISTS (SELECT 1 FROM products p WHERE p.id = ci.product_id)`,
		cartID,
	)
	return err
}

// touch bumps the cart's updated_at.
func (s *Service) touch(ctx context.Context, cartID int64) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE carts SET updated_at = NOW() WHERE cart_id = $1`, cartID,
	); err != nil {
		return fmt.Errorf("cart touch: %w", err)
	}
	return nil
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

var (
	// ErrItemNotFound is returned when a cart item is missing or owned by someone else.
	ErrItemNotFound = fmt.Errorf("cart item not found")
	// ErrProductNotFound is returned when adding a product that no longer exists.
	ErrProductNotFound = fmt.Errorf("product not found")
)
