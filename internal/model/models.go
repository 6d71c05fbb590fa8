// Package model defines the JSON shapes shared across the marketplace service.
package model

import "time"

// User is the public view of an account. Email is included because artist
// profiles expose a contact address; password handling lives at the gateway.
type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Location   string    `json:"location,omitempty"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Post is a gallery post in the social feed.
type Post struct {
	ID          int64     `json:"id"`
	ArtistID    int64     `json:"artistId"`
	ArtistName  string    `json:"artistName"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MediaURL    string    `json:"mediaUrl"`
	IsPromoted  bool      `json:"isPromoted"`
	LikeCount   int       `json:"likeCount"`
	Comments    []Comment `json:"comments"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Product is a purchasable listing in the catalog.
type Product struct {
	ID          int64     `json:"id"`
	ArtistID    int64     `json:"artistId"`
	ArtistName  string    `json:"artistName"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImgURL      string    `json:"imgUrl"`
	IsPromoted  bool      `json:"isPromoted"`
	Comments    []Comment `json:"comments,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Comment is attached to either a post or a product.
type Comment struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile is the public artist page: the user plus everything they published.
type Profile struct {
	User     User      `json:"user"`
	Posts    []Post    `json:"posts"`
	Products []Product `json:"products"`
}

// CartItem is one line of a user's cart, joined with the live product row.
type CartItem struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	Title     string    `json:"title"`
	ImgURL    string    `json:"imgUrl"`
	UnitPrice float64   `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	LineTotal float64   `json:"lineTotal"`
	AddedAt   time.Time `json:"addedAt"`
}

// Cart is the full cart view returned by GET /cart.
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
}

// OrderItem snapshots a product at checkout time. ProductID is nullable
// because products may be deleted after the order is placed.
type OrderItem struct {
	ID            int64   `json:"id"`
	ProductID     *int64  `json:"productId"`
	ProductTitle  string  `json:"productTitle"`
	ProductImgURL string  `json:"productImgUrl"`
	UnitPrice     float64 `json:"unitPrice"`
	Quantity      int     `json:"quantity"`
	TotalPrice    float64 `json:"totalPrice"`
}

// Order is a placed order with its item snapshots.
type Order struct {
	ID               int64       `json:"id"`
	UserID           int64       `json:"userId"`
	Status           string      `json:"status"`
	PaymentStatus    string      `json:"paymentStatus"`
	PaymentReference string      `json:"paymentReference"`
	TotalPrice       float64     `json:"totalPrice"`
	ShippingName     string      `json:"shippingName"`
	ShippingPhone    string      `json:"shippingPhone"`
	ShippingAddress  string      `json:"shippingAddress"`
	Items            []OrderItem `json:"items,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// TrendingEntry is one row of the cached trending snapshot.
type TrendingEntry struct {
	ID         int64   `json:"id"`
	Kind       string  `json:"kind"` // "post" or "product"
	Title      string  `json:"title"`
	ArtistName string  `json:"artistName"`
	MediaURL   string  `json:"mediaUrl,omitempty"`
	Price      float64 `json:"price,omitempty"`
	Score      int     `json:"score"` // likes + comments
}

// TrendingSnapshot is what the analytics worker writes to Redis and what
// GET /trending serves.
type TrendingSnapshot struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Posts       []TrendingEntry `json:"posts"`
	Products    []TrendingEntry `json:"products"`
}
