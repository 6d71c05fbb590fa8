// HTTP handlers for the shopping cart.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	GET  /cart                      → view cart with line totals
//	GET  /cart/count                → summed quantity (navbar badge)
//	POST /cart/add/{productID}      → add product / increment quantity
//	POST /cart/update/{itemID}      → set quantity (<= 0 removes)
//	POST /cart/remove/{itemID}      → remove one item
//	POST /cart/clear                → empty the cart
package cart

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"clyst/marketplace-service/internal/httpx"
)

// Handler adapts Service to HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all cart routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/cart", h.handleCart)
	mux.HandleFunc("/cart/", h.handleCartAction)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

func (h *Handler) handleCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	c, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, c)
}

// handleCartAction handles /cart/count, /cart/clear and the {id}-suffixed actions.
func (h *Handler) handleCartAction(w http.ResponseWriter, r *http.Request) {
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
	action := parts[1]

	switch {
	case action == "count" && r.Method == http.MethodGet:
		h.count(w, r, userID)
	case action == "clear" && r.Method == http.MethodPost:
		h.clear(w, r, userID)
	case len(parts) == 3 && r.Method == http.MethodPost:
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			httpx.Error(w, "invalid id", http.StatusNotFound)
			return
		}
		switch action {
		case "add":
			h.add(w, r, userID, id)
		case "update":
			h.update(w, r, userID, id)
		case "remove":
			h.remove(w, r, userID, id)
		default:
			httpx.Error(w, "not found", http.StatusNotFound)
		}
	default:
		httpx.Error(w, "not found", http.StatusNotFound)
	}
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) count(w http.ResponseWriter, r *http.Request, userID int64) {
	n, err := h.svc.Count(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, map[string]int{"count": n})
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request, userID int64) {
	if err := h.svc.Clear(r.Context(), userID); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, map[string]string{"message": "cart cleared"})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request, userID, productID int64) {
	if err := h.svc.Add(r.Context(), userID, productID); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, map[string]string{"message": "product added to cart"})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, userID, itemID int64) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.UpdateQuantity(r.Context(), userID, itemID, body.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, map[string]string{"message": "cart updated"})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request, userID, itemID int64) {
	if err := h.svc.Remove(r.Context(), userID, itemID); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, map[string]string{"message": "item removed from cart"})
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrProductNotFound) {
		httpx.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	httpx.Error(w, "internal server error", http.StatusInternalServerError)
}
