// clyst marketplace-service
//
// Backend for the Clyst art marketplace. Exposes a REST API used by the
// Gateway to implement:
//   - the social feed (posts, comments, likes)
//   - the product catalog with natural-language search
//     ("paintings under 2000", "pottery between 1k and 5k")
//   - shopping cart and checkout with an order state machine
//   - public artist profiles
//   - a cron-refreshed trending snapshot cached in Redis
//
// Publishes EVENT_POST_LIKED, EVENT_ORDER_PLACED, EVENT_ORDER_UPDATED and
// EVENT_TRENDING_REFRESHED to Redis for Gateway SSE forward.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clyst/marketplace-service/internal/analytics"
	"clyst/marketplace-service/internal/cart"
	"clyst/marketplace-service/internal/catalog"
	"clyst/marketplace-service/internal/config"
	"clyst/marketplace-service/internal/db"
	"clyst/marketplace-service/internal/order"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[marketplace-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[marketplace-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[marketplace-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[marketplace-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[marketplace-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[marketplace-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[marketplace-service] Redis connected ✓")

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	catalog.NewHandler(catalog.NewService(pool, rdb), cfg.AdminUserID).RegisterRoutes(mux)
	cart.NewHandler(cart.NewService(pool)).RegisterRoutes(mux)
	order.NewHandler(order.NewService(pool, rdb), cfg.AdminUserID).RegisterRoutes(mux)
	analytics.NewHandler(rdb).RegisterRoutes(mux)

	// ── Trending cron ────────────────────────────────────────────────────────
	worker := analytics.NewWorker(pool, rdb, cfg.TrendingLimit, cfg.TrendingIntervalHours)
	sched := analytics.NewScheduler(worker, cfg.TrendingIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[marketplace-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[marketplace-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[marketplace-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[marketplace-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[marketplace-service] Shutdown error: %v", err)
	}
	log.Println("[marketplace-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "marketplace-service",
		"version": version,
	})
}
