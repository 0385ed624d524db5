package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvEnvFile  = "ENV_FILE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
	EnvMaxUploadSize  = "MAX_UPLOAD_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvReconcileBaseTimeout   = "RECONCILE_BASE_TIMEOUT"
	EnvReconcilePerRowTimeout = "RECONCILE_PER_ROW_TIMEOUT"
	EnvPartialThreshold       = "PARTIAL_THRESHOLD"
	EnvMaxPartialThreshold    = "MAX_PARTIAL_THRESHOLD"
	EnvPreviewRows            = "PREVIEW_ROWS"

	EnvKafkaEnabled = "KAFKA_ENABLED"
)
