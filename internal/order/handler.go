// HTTP handlers for checkout and orders.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	POST /checkout              → create order from the caller's cart
//	GET  /orders                → list caller's orders
//	GET  /orders/{id}           → order detail with items (owner or admin)
//	POST /orders/{id}/cancel    → owner cancel (pending + unpaid only)
//	POST /orders/{id}/status    → admin status / payment-status update
package order

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"clyst/marketplace-service/internal/httpx"
)

// Handler adapts Service to HTTP.
type Handler struct {
	svc         *Service
	adminUserID int64
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, adminUserID int64) *Handler {
	return &Handler{svc: svc, adminUserID: adminUserID}
}

// RegisterRoutes mounts all order routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/checkout", h.handleCheckout)
	mux.HandleFunc("/orders", h.handleOrders)
	mux.HandleFunc("/orders/", h.handleOrderAction)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req CheckoutRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.svc.Checkout(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, orders)
}

// handleOrderAction handles GET /orders/{id} and POST /orders/{id}/cancel|status.
func (h *Handler) handleOrderAction(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}
	orderID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		httpx.Error(w, "invalid order id", http.StatusNotFound)
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		h.getOrder(w, r, userID, orderID)
	case len(parts) == 3 && r.Method == http.MethodPost && parts[2] == "cancel":
		h.cancelOrder(w, r, userID, orderID)
	case len(parts) == 3 && r.Method == http.MethodPost && parts[2] == "status":
		h.updateStatus(w, r, userID, orderID)
	default:
		httpx.Error(w, "not found", http.StatusNotFound)
	}
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, userID, orderID int64) {
	o, err := h.svc.GetOrder(r.Context(), userID, orderID, userID == h.adminUserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request, userID, orderID int64) {
	o, err := h.svc.Cancel(r.Context(), userID, orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, userID, orderID int64) {
	if userID != h.adminUserID {
		httpx.Error(w, "admin only", http.StatusForbidden)
		return
	}

	var body struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), orderID, body.Status, body.PaymentStatus)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, o)
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		httpx.Error(w, ve.Msg, http.StatusBadRequest)
		return
	}
	httpx.Error(w, "internal server error", http.StatusInternalServerError)
}
