package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	// long enough to cover an AI generation call
	ServerRequestTimeout  = 120 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Outbound call timeouts
const (
	AIRequestTimeout       = 90 * time.Second
	CheckoutRequestTimeout = 15 * time.Second
)

// Posts cache freshness window in the admin panel client
const PostsCacheTTL = 60 * time.Second

// Background job intervals
const ViewFlushInterval = 1 * time.Minute

// Static asset caching
const AssetCacheMaxAge = 86400 // seconds; HTML is always no-cache
