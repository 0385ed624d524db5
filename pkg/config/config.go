package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"gstrecon/pkg/client"
	"gstrecon/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int
	MaxUploadSize  int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	ReconcileBaseTimeout   time.Duration
	ReconcilePerRowTimeout time.Duration
	PartialThreshold       int
	MaxPartialThreshold    int
	PreviewRows            int

	KafkaEnabled bool
	LogLevel     string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the environment, after applying ENV_FILE (default .env) when it
// exists. Variables already set in the process win over the file.
func Load(serviceName string) *Config {
	_ = godotenv.Load(getEnvStr(EnvEnvFile, DefaultEnvFile))

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		MaxUploadSize:  getEnvNum(EnvMaxUploadSize, DefaultMaxUploadSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		ReconcileBaseTimeout:   getEnvDuration(EnvReconcileBaseTimeout, DefaultReconcileBaseTimeout),
		ReconcilePerRowTimeout: getEnvDuration(EnvReconcilePerRowTimeout, DefaultReconcilePerRowTimeout),
		PartialThreshold:       getEnvNum(EnvPartialThreshold, DefaultPartialThreshold),
		MaxPartialThreshold:    getEnvNum(EnvMaxPartialThreshold, DefaultMaxPartialThreshold),
		PreviewRows:            getEnvNum(EnvPreviewRows, DefaultPreviewRows),

		KafkaEnabled: getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		LogLevel:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Client:       client.NewClient(),
	}
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.ConnectMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// Validate reports every invalid setting at once as a numbered list.
func (cfg *Config) Validate() error {
	var errors []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errors = append(errors, fmt.Sprintf(format, args...))
		}
	}

	port, err := strconv.Atoi(cfg.Port)
	check(err == nil && port >= 1 && port <= 65535, "Port must be between 1 and 65535, got: %s", cfg.Port)

	if cfg.MongoURI == "" {
		check(false, "MongoURI cannot be empty")
	} else {
		check(mongoSchemeRegex.MatchString(cfg.MongoURI),
			"MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI))
	}
	check(cfg.MongoDatabaseName != "", "MongoDatabaseName cannot be empty")
	_, err = logger.ParseLevel(cfg.LogLevel)
	check(err == nil, "LogLevel must be one of debug, info, warn, error, got: %s", cfg.LogLevel)

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"ReconcileBaseTimeout", cfg.ReconcileBaseTimeout},
	} {
		check(d.value > 0, "%s must be positive, got: %s", d.name, d.value)
	}

	check(cfg.RateLimitRequests > 0, "RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests)
	check(cfg.MaxRequestSize > 0, "MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize)
	check(cfg.MaxUploadSize >= cfg.MaxRequestSize,
		"MaxUploadSize (%d) must be >= MaxRequestSize (%d)", cfg.MaxUploadSize, cfg.MaxRequestSize)

	check(cfg.ReconcilePerRowTimeout >= 0, "ReconcilePerRowTimeout cannot be negative, got: %s", cfg.ReconcilePerRowTimeout)
	// A base budget above the request timeout means HTTP reconciliations can
	// never finish inside the service's own deadline.
	check(cfg.ReconcileBaseTimeout <= cfg.RequestTimeout,
		"ReconcileBaseTimeout (%s) must not exceed RequestTimeout (%s)", cfg.ReconcileBaseTimeout, cfg.RequestTimeout)
	check(cfg.MaxPartialThreshold >= 1, "MaxPartialThreshold must be at least 1, got: %d", cfg.MaxPartialThreshold)
	check(cfg.PartialThreshold >= 1 && cfg.PartialThreshold <= cfg.MaxPartialThreshold,
		"PartialThreshold (%d) must be between 1 and MaxPartialThreshold (%d)", cfg.PartialThreshold, cfg.MaxPartialThreshold)
	check(cfg.PreviewRows >= 0, "PreviewRows cannot be negative, got: %d", cfg.PreviewRows)

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"max_upload_size", cfg.MaxUploadSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"reconcile_base_timeout", cfg.ReconcileBaseTimeout,
		"reconcile_per_row_timeout", cfg.ReconcilePerRowTimeout,
		"partial_threshold", cfg.PartialThreshold,
		"max_partial_threshold", cfg.MaxPartialThreshold,
		"preview_rows", cfg.PreviewRows,
		"kafka_enabled", cfg.KafkaEnabled,
		"log_level", cfg.LogLevel,
	)
}

// ReconcileTimeout bounds one reconciliation run by the size of its input.
func (cfg *Config) ReconcileTimeout(rows int) time.Duration {
	return cfg.ReconcileBaseTimeout + time.Duration(rows)*cfg.ReconcilePerRowTimeout
}

var (
	mongoSchemeRegex     = regexp.MustCompile(`^mongodb(\+srv)?://.+`)
	mongoCredentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
)

func redactMongoURI(uri string) string {
	return mongoCredentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.Close(cfg.Log, cfg.ShutdownTimeout)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
