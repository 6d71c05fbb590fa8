package analytics

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"

	"clyst/marketplace-service/internal/httpx"
)

// Handler serves the cached trending snapshot.
type Handler struct {
	rdb *redis.Client
}

// NewHandler returns a configured Handler.
func NewHandler(rdb *redis.Client) *Handler {
	return &Handler{rdb: rdb}
}

// RegisterRoutes mounts GET /trending on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/trending", h.handleTrending)
}

func (h *Handler) handleTrending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap, err := LoadSnapshot(r.Context(), h.rdb)
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			httpx.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		httpx.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	httpx.OK(w, snap)
}
