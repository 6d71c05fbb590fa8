// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the marketplace service.
type Config struct {
	Port                  string
	DatabaseURL           string
	RedisURL              string
	AdminUserID           int64 // account allowed to moderate and update orders
	TrendingIntervalHours int   // how often the analytics cron recomputes trending
	TrendingLimit         int   // entries kept per listing kind in the snapshot
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("MARKETPLACE_PORT")
	if port == "" {
		port = "8080"
	}

	// The original deployment seeded the first registered account as admin.
	adminID := int64(1)
	if s := os.Getenv("ADMIN_USER_ID"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("ADMIN_USER_ID must be a positive integer, got %q", s)
		}
		adminID = v
	}

	interval := 6
	if s := os.Getenv("TRENDING_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("TRENDING_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	limit := 10
	if s := os.Getenv("TRENDING_LIMIT"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("TRENDING_LIMIT must be a positive integer, got %q", s)
		}
		limit = v
	}

	return &Config{
		Port:                  port,
		DatabaseURL:           dbURL,
		RedisURL:              redisURL,
		AdminUserID:           adminID,
		TrendingIntervalHours: interval,
		TrendingLimit:         limit,
	}, nil
}
