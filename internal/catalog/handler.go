// HTTP handlers for the feed, catalog and profiles.
//
// Listing routes accept an optional q= parameter carrying a free-text search
// phrase ("paintings under 2000"); identity for mutations comes from the
// x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	GET    /posts                      → list feed posts (q= filters)
//	POST   /posts                      → create post (optionally promoted)
//	DELETE /posts/{id}                 → delete post (owner or admin)
//	POST   /posts/{id}/comments        → comment on post
//	GET    /posts/{id}/likes           → like total + caller's state (public)
//	POST   /posts/{id}/like            → toggle like
//	DELETE /comments/{id}              → delete post comment (author or admin)
//	GET    /products                   → list products (q= filters, incl. price)
//	POST   /products                   → create product
//	GET    /products/{id}              → product detail with comments
//	DELETE /products/{id}              → delete product (owner or admin)
//	POST   /products/{id}/comments     → comment on product
//	POST   /products/{id}/promote      → create promoted post from product (owner)
//	DELETE /product-comments/{id}      → delete product comment (author or admin)
//	GET    /profiles/{id}              → public artist profile
package catalog

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

// RegisterRoutes mounts all catalog routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/posts", h.handlePosts)
	mux.HandleFunc("/posts/", h.handlePostAction)
	mux.HandleFunc("/comments/", h.handleCommentAction)
	mux.HandleFunc("/products", h.handleProducts)
	mux.HandleFunc("/products/", h.handleProductAction)
	mux.HandleFunc("/product-comments/", h.handleProductCommentAction)
	mux.HandleFunc("/profiles/", h.handleProfile)
}

func (h *Handler) isAdmin(userID int64) bool { return userID == h.adminUserID }

// ─── Posts ───────────────────────────────────────────────────────────────────

func (h *Handler) handlePosts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		posts, err := h.svc.ListPosts(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		httpx.OK(w, posts)
	case http.MethodPost:
		userID, err := httpx.UserID(r)
		if err != nil {
			httpx.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		var req CreatePostRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := h.svc.CreatePost(r.Context(), userID, req)
		if err != nil {
			h.writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, p)
	default:
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePostAction handles DELETE /posts/{id} and the nested comment/like routes.
func (h *Handler) handlePostAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}
	postID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		httpx.Error(w, "invalid post id", http.StatusNotFound)
		return
	}

	// Like totals are public; anonymous callers read liked=false.
	if len(parts) == 3 && parts[2] == "likes" && r.Method == http.MethodGet {
		userID, _ := httpx.UserID(r)
		count, liked, err := h.svc.Likes(r.Context(), userID, postID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		httpx.OK(w, map[string]any{"liked": liked, "count": count})
		return
	}

	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodDelete:
		if err := h.svc.DeletePost(r.Context(), userID, postID, h.isAdmin(userID)); err != nil {
			h.writeError(w, err)
			return
		}
		httpx.OK(w, map[string]string{"status": "deleted"})
	case len(parts) == 3 && parts[2] == "comments" && r.Method == http.MethodPost:
		var req CommentRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c, err := h.svc.AddPostComment(r.Context(), userID, postID, req.Content)
		if err != nil {
			h.writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, c)
	case len(parts) == 3 && parts[2] == "like" && r.Method == http.MethodPost:
		liked, count, err := h.svc.ToggleLike(r.Context(), userID, postID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		httpx.OK(w, map[string]any{"liked": liked, "count": count})
	default:
		httpx.Error(w, "not found", http.StatusNotFound)
	}
}

// handleCommentAction handles DELETE /comments/{id}.
func (h *Handler) handleCommentAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	commentID, ok := trailingID(r.URL.Path)
	if !ok {
		httpx.Error(w, "invalid comment id", http.StatusNotFound)
		return
	}
	if err := h.svc.DeletePostComment(r.Context(), userID, commentID, h.isAdmin(userID)); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, map[string]string{"status": "deleted"})
}

// ─── Products ────────────────────────────────────────────────────────────────

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := h.svc.ListProducts(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		httpx.OK(w, products)
	case http.MethodPost:
		userID, err := httpx.UserID(r)
		if err != nil {
			httpx.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		var req CreateProductRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := h.svc.CreateProduct(r.Context(), userID, req)
		if err != nil {
			h.writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, p)
	default:
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleProductAction handles GET/DELETE /products/{id} and POST /products/{id}/comments.
func (h *Handler) handleProductAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}
	productID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		httpx.Error(w, "invalid product id", http.StatusNotFound)
		return
	}

	// Product detail is public; mutations need the gateway identity.
	if len(parts) == 2 && r.Method == http.MethodGet {
		p, err := h.svc.GetProduct(r.Context(), productID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		httpx.OK(w, p)
		return
	}

	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodDelete:
		if err := h.svc.DeleteProduct(r.Context(), userID, productID, h.isAdmin(userID)); err != nil {
			h.writeError(w, err)
			return
		}
		httpx.OK(w, map[string]string{"status": "deleted"})
	case len(parts) == 3 && parts[2] == "comments" && r.Method == http.MethodPost:
		var req CommentRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c, err := h.svc.AddProductComment(r.Context(), userID, productID, req.Content)
		if err != nil {
			h.writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, c)
	case len(parts) == 3 && parts[2] == "promote" && r.Method == http.MethodPost:
		p, err := h.svc.PromoteProduct(r.Context(), userID, productID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, p)
	default:
		httpx.Error(w, "not found", http.StatusNotFound)
	}
}

// handleProductCommentAction handles DELETE /product-comments/{id}.
func (h *Handler) handleProductCommentAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	commentID, ok := trailingID(r.URL.Path)
	if !ok {
		httpx.Error(w, "invalid comment id", http.StatusNotFound)
		return
	}
	if err := h.svc.DeleteProductComment(r.Context(), userID, commentID, h.isAdmin(userID)); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, map[string]string{"status": "deleted"})
}

// ─── Profiles ────────────────────────────────────────────────────────────────

// handleProfile handles GET /profiles/{id}.
func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	profileID, ok := trailingID(r.URL.Path)
	if !ok {
		httpx.Error(w, "invalid user id", http.StatusNotFound)
		return
	}
	p, err := h.svc.Profile(r.Context(), profileID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.OK(w, p)
}

// trailingID parses the {id} segment of a two-segment path like /comments/{id}.
func trailingID(path string) (int64, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Error(w, "not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrForbidden) {
		httpx.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		httpx.Error(w, ve.Msg, http.StatusBadRequest)
		return
	}
	httpx.Error(w, "internal server error", http.StatusInternalServerError)
}
