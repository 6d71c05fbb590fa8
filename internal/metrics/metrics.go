// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchQueries counts natural-language searches by outcome:
	// "priced" when a price phrase was recognised, "keywords" otherwise.
	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_search_queries_total",
			Help: "Total natural-language search queries parsed",
		},
		[]string{"target", "outcome"},
	)

	// OrdersPlaced counts successful checkouts.
	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_orders_placed_total",
			Help: "Total orders created via checkout",
		},
	)

	// EventsPublished counts domain events pushed to Redis pub/sub.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_events_published_total",
			Help: "Total domain events published to Redis",
		},
		[]string{"event"},
	)

	// TrendingRefreshes counts analytics worker cycles.
	TrendingRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_trending_refreshes_total",
			Help: "Total trending snapshot recomputations",
		},
	)
)
