package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "gstrecon"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"
	DefaultEnvFile  = ".env"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 60 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024  // 1MB
	DefaultMaxUploadSize  = 32 * 1024 * 1024 // 32MB

	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultReconcileBaseTimeout   = 5 * time.Second
	DefaultReconcilePerRowTimeout = 50 * time.Microsecond
	DefaultPartialThreshold       = 3
	DefaultMaxPartialThreshold    = 50
	DefaultPreviewRows            = 5

	DefaultKafkaEnabled = false

	DefaultPaginationLimit = 100
)
