package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"clyst/marketplace-service/internal/metrics"
	"clyst/marketplace-service/internal/model"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates checkout and order lifecycle logic.
// It has no dependency on net/http — it can be used by any transport layer.
type Service struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool, rdb *redis.Client) *Service {
	return &Service{pool: pool, rdb: rdb}
}

// CheckoutRequest carries the shipping details confirmed at checkout.
type CheckoutRequest struct {
	ShippingName    string `json:"shippingName" validate:"required"`
	ShippingPhone   string `json:"shippingPhone" validate:"required"`
	ShippingAddress string `json:"shippingAddress" validate:"required"`
}

// checkoutLine is one cart row joined with its live product at checkout time.
type checkoutLine struct {
	productID int64
	title     string
	imgURL    string
	unitPrice float64
	quantity  int
}

// ─── Business logic ──────────────────────────────────────────────────────────

// Checkout turns the user's cart into an order with per-item product
// snapshots, clears the cart in the same transaction, and publishes
// EVENT_ORDER_PLACED. Cart rows whose product has been deleted are ignored.
func (s *Service) Checkout(ctx context.Context, userID int64, req CheckoutRequest) (*model.Order, error) {
	lines, err := s.loadCheckoutLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &ValidationError{Msg: "cart is empty"}
	}

	var subtotal float64
	for _, l := range lines {
		subtotal += float64(l.quantity) * l.unitPrice
	}
	total := subtotal // free shipping

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("checkout begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var o model.Order
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (user_id, status, payment_status, payment_reference,
		                     total_price, shipping_name, shipping_phone, shipping_address)
		 VALUES ($1, 'pending', 'unpaid', $2, $3, $4, $5, $6)
		 RETURNING order_id, user_id, status, payment_status, payment_reference,
		           total_price, shipping_name, shipping_phone, shipping_address,
		           created_at, updated_at`,
		userID, uuid.NewString(), total,
		req.ShippingName, req.ShippingPhone, req.ShippingAddress,
	).Scan(
		&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentReference,
		&o.TotalPrice, &o.ShippingName, &o.ShippingPhone, &o.ShippingAddress,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("checkout insert order: %w", err)
	}

	for _, l := range lines {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, product_title, product_img_url,
			                          unit_price, quantity, total_price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.ID, l.productID, l.title, l.imgURL,
			l.unitPrice, l.quantity, float64(l.quantity)*l.unitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("checkout insert item: %w", err)
		}
	}

	// Clear the cart: the order now owns these lines.
	_, err = tx.Exec(ctx,
		`DELETE FROM cart_items ci
		 USING carts c
		 WHERE ci.cart_id = c.cart_id AND c.user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("checkout clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("checkout commit: %w", err)
	}

	o.Items, err = s.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	s.publish(ctx, "EVENT_ORDER_PLACED", map[string]any{
		"type":    "EVENT_ORDER_PLACED",
		"orderId": o.ID,
		"userId":  userID,
		"total":   total,
	})

	return &o, nil
}

// ListOrders returns the user's orders, newest first, without item details.
func (s *Service) ListOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT order_id, user_id, status, payment_status, payment_reference,
		        total_price, shipping_name, shipping_phone, shipping_address,
		        created_at, updated_at
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY order_id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listOrders query: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentReference,
			&o.TotalPrice, &o.ShippingName, &o.ShippingPhone, &o.ShippingAddress,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("listOrders scan: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetOrder returns one order with its items. Admins may read any order;
// everyone else only their own.
func (s *Service) GetOrder(ctx context.Context, userID, orderID int64, isAdmin bool) (*model.Order, error) {
	var o model.Order
	err := s.pool.QueryRow(ctx,
		`SELECT order_id, user_id, status, payment_status, payment_reference,
		        total_price, shipping_name, shipping_phone, shipping_address,
		        created_at, updated_at
		 FROM orders WHERE order_id = $1`,
		orderID,
	).Scan(
		&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentReference,
		&o.TotalPrice, &o.ShippingName, &o.ShippingPhone, &o.ShippingAddress,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, ErrNotFound
	}
	if o.UserID != userID && !isAdmin {
		return nil, ErrNotFound // do not reveal other users' orders
	}

	o.Items, err = s.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Cancel lets the order owner cancel while the order is still pending and
// unpaid. Anything later requires an admin status update.
func (s *Service) Cancel(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	var statusStr, payStr string
	err := s.pool.QueryRow(ctx,
		`SELECT status, payment_status FROM orders WHERE order_id = $1 AND user_id = $2`,
		orderID, userID,
	).Scan(&statusStr, &payStr)
	if err != nil {
		return nil, ErrNotFound
	}

	st, _ := ParseStatus(statusStr)
	ps, _ := ParsePaymentStatus(payStr)
	if !CanUserCancel(st, ps) {
		return nil, &ValidationError{Msg: "order cannot be canceled at this stage"}
	}

	return s.applyStatus(ctx, orderID, StatusCanceled, "")
}

// UpdateStatus applies an admin status and/or payment-status change,
// enforcing the lifecycle state machine. Empty strings leave the
// corresponding field unchanged.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, statusStr, payStr string) (*model.Order, error) {
	var curStatusStr, curPayStr string
	err := s.pool.QueryRow(ctx,
		`SELECT status, payment_status FROM orders WHERE order_id = $1`,
		orderID,
	).Scan(&curStatusStr, &curPayStr)
	if err != nil {
		return nil, ErrNotFound
	}
	cur, _ := ParseStatus(curStatusStr)
	curPay, _ := ParsePaymentStatus(curPayStr)

	var newStatus Status
	if statusStr != "" {
		newStatus, err = ParseStatus(statusStr)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		if !IsTransitionAllowed(cur, newStatus) {
			return nil, &ValidationError{
				Msg: fmt.Sprintf("transition %s → %s is not allowed", cur, newStatus),
			}
		}
	}

	var newPay PaymentStatus
	if payStr != "" {
		newPay, err = ParsePaymentStatus(payStr)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		if !IsPaymentTransitionAllowed(curPay, newPay) {
			return nil, &ValidationError{
				Msg: fmt.Sprintf("payment transition %s → %s is not allowed", curPay, newPay),
			}
		}
	}

	if newStatus == "" && newPay == "" {
		return nil, &ValidationError{Msg: "nothing to update"}
	}

	return s.applyStatus(ctx, orderID, newStatus, newPay)
}

// applyStatus writes the new status values (empty = unchanged) and returns
// the updated order with items.
func (s *Service) applyStatus(ctx context.Context, orderID int64, st Status, ps PaymentStatus) (*model.Order, error) {
	var o model.Order
	err := s.pool.QueryRow(ctx,
		`UPDATE orders
		 SET status         = COALESCE(NULLIF($1, ''), status),
		     payment_status = COALESCE(NULLIF($2, ''), payment_status),
		     updated_at     = NOW()
		 WHERE order_id = $3
		 RETURNING order_id, user_id, status, payment_status, payment_reference,
		           total_price, shipping_name, shipping_phone, shipping_address,
		           created_at, updated_at`,
		string(st), string(ps), orderID,
	).Scan(
		&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentReference,
		&o.TotalPrice, &o.ShippingName, &o.ShippingPhone, &o.ShippingAddress,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("applyStatus update: %w", err)
	}

	o.Items, err = s.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "EVENT_ORDER_UPDATED", map[string]any{
		"type":          "EVENT_ORDER_UPDATED",
		"orderId":       o.ID,
		"userId":        o.UserID,
		"status":        o.Status,
		"paymentStatus": o.PaymentStatus,
	})

	return &o, nil
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// loadCheckoutLines returns the user's cart joined with live products only:
// rows whose product was deleted since being added are skipped.
func (s *Service) loadCheckoutLines(ctx context.Context, userID int64) ([]checkoutLine, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, p.title, p.img_url, p.price, ci.quantity
		 FROM cart_items ci
		 JOIN carts c    ON c.cart_id = ci.cart_id
		 JOIN products p ON p.id = ci.product_id
		 WHERE c.user_id = $1
		 ORDER BY ci.item_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("checkout load cart: %w", err)
	}
	defer rows.Close()

	var lines []checkoutLine
	for rows.Next() {
		var l checkoutLine
		if err := rows.Scan(&l.productID, &l.title, &l.imgURL, &l.unitPrice, &l.quantity); err != nil {
			return nil, fmt.Errorf("checkout scan cart: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *Service) loadItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, product_id, product_title, product_img_url,
		        unit_price, quantity, total_price
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("loadItems query: %w", err)
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(
			&it.ID, &it.ProductID, &it.ProductTitle, &it.ProductImgURL,
			&it.UnitPrice, &it.Quantity, &it.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("loadItems scan: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// publish pushes a domain event to Redis pub/sub (non-fatal).
func (s *Service) publish(ctx context.Context, channel string, payload map[string]any) {
	event, _ := json.Marshal(payload)
	if err := s.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(channel).Inc()
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when an order is missing or not visible to the caller.
var ErrNotFound = fmt.Errorf("order not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
