package kafka_config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	OffsetOldest = "oldest"
	OffsetNewest = "newest"
)

var compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}

type Config struct {
	Brokers []string

	ResultsTopic  string
	RequestsTopic string
	DLQTopic      string
	ConsumerGroup string

	Producer ProducerConfig
	Consumer ConsumerConfig

	EnableMiddleware bool
}

type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	RequiredAcks int // -1 all replicas, 0 none, 1 leader
	Compression  string
	Async        bool
}

type ConsumerConfig struct {
	// StartOffset applies to a group with no committed offset. Requests queued
	// before the first worker started are only seen from the oldest offset.
	StartOffset       string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	CommitInterval    time.Duration
	HeartbeatInterval time.Duration
	SessionTimeout    time.Duration
	RebalanceTimeout  time.Duration
	MaxRetries        int
}

// StartOffsetValue converts StartOffset to kafka-go's FirstOffset/LastOffset.
func (c ConsumerConfig) StartOffsetValue() int64 {
	if c.StartOffset == OffsetNewest {
		return -1
	}
	return -2
}

// Load reads the Kafka settings from the environment and validates them.
func Load() (*Config, error) {
	cfg := &Config{
		Brokers: splitList(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers)),

		ResultsTopic:  getEnvStr(EnvKafkaResultsTopic, DefaultResultsTopic),
		RequestsTopic: getEnvStr(EnvKafkaRequestsTopic, DefaultRequestsTopic),
		DLQTopic:      getEnvStr(EnvKafkaDLQTopic, DefaultDLQTopic),
		ConsumerGroup: getEnvStr(EnvKafkaConsumerGroup, DefaultConsumerGroup),

		Producer: ProducerConfig{
			MaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
			BatchTimeout: getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
			RequiredAcks: getEnvInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
			Compression:  strings.ToLower(getEnvStr(EnvKafkaProducerCompression, DefaultProducerCompression)),
			Async:        getEnvBool(EnvKafkaProducerAsync, DefaultProducerAsync),
		},

		Consumer: ConsumerConfig{
			StartOffset:       strings.ToLower(getEnvStr(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset)),
			MinBytes:          getEnvInt(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
			MaxBytes:          getEnvInt(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
			MaxWait:           getEnvDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
			CommitInterval:    getEnvDuration(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval),
			HeartbeatInterval: getEnvDuration(EnvKafkaConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval),
			SessionTimeout:    getEnvDuration(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout),
			RebalanceTimeout:  getEnvDuration(EnvKafkaConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout),
			MaxRetries:        getEnvInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
		},

		EnableMiddleware: getEnvBool(EnvKafkaEnableMiddleware, DefaultEnableMiddleware),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka configuration: %w", err)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errors []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errors = append(errors, fmt.Sprintf(format, args...))
		}
	}

	check(len(cfg.Brokers) > 0, "At least one Kafka broker is required")
	check(cfg.ResultsTopic != "", "ResultsTopic is required")
	check(cfg.RequestsTopic != "", "RequestsTopic is required")
	check(cfg.ResultsTopic != cfg.RequestsTopic, "ResultsTopic and RequestsTopic must differ, got: %s", cfg.RequestsTopic)
	check(cfg.ConsumerGroup != "", "ConsumerGroup is required")
	check(cfg.DLQTopic == "" || (cfg.DLQTopic != cfg.RequestsTopic && cfg.DLQTopic != cfg.ResultsTopic),
		"DLQTopic must differ from the data topics, got: %s", cfg.DLQTopic)

	p := cfg.Producer
	check(p.MaxAttempts > 0, "Producer.MaxAttempts must be positive, got: %d", p.MaxAttempts)
	check(p.BatchTimeout > 0, "Producer.BatchTimeout must be positive, got: %s", p.BatchTimeout)
	check(p.RequiredAcks >= -1 && p.RequiredAcks <= 1, "Producer.RequiredAcks must be -1, 0, or 1, got: %d", p.RequiredAcks)
	check(slices.Contains(compressions, p.Compression),
		"Producer.Compression must be one of %v, got: %s", compressions, p.Compression)

	c := cfg.Consumer
	check(c.StartOffset == OffsetOldest || c.StartOffset == OffsetNewest,
		"Consumer.StartOffset must be %q or %q, got: %s", OffsetOldest, OffsetNewest, c.StartOffset)
	check(c.MinBytes > 0, "Consumer.MinBytes must be positive, got: %d", c.MinBytes)
	check(c.MaxBytes >= c.MinBytes, "Consumer.MaxBytes (%d) must be >= MinBytes (%d)", c.MaxBytes, c.MinBytes)
	check(c.MaxWait > 0, "Consumer.MaxWait must be positive, got: %s", c.MaxWait)
	check(c.CommitInterval > 0, "Consumer.CommitInterval must be positive, got: %s", c.CommitInterval)
	check(c.HeartbeatInterval > 0 && c.HeartbeatInterval < c.SessionTimeout,
		"Consumer.HeartbeatInterval (%s) must be positive and below SessionTimeout (%s)", c.HeartbeatInterval, c.SessionTimeout)
	check(c.RebalanceTimeout > 0, "Consumer.RebalanceTimeout must be positive, got: %s", c.RebalanceTimeout)
	check(c.MaxRetries >= 0, "Consumer.MaxRetries cannot be negative, got: %d", c.MaxRetries)

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

// LogConfiguration logs the settings through logFunc, typically a logger's Info.
func (cfg *Config) LogConfiguration(logFunc func(msg string, args ...any)) {
	if logFunc == nil {
		return
	}

	logFunc("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"results_topic", cfg.ResultsTopic,
		"requests_topic", cfg.RequestsTopic,
		"dlq_topic", cfg.DLQTopic,
		"consumer_group", cfg.ConsumerGroup,
		"producer", cfg.Producer,
		"consumer", cfg.Consumer,
		"enable_middleware", cfg.EnableMiddleware,
	)
}

func splitList(s string) []string {
	var items []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
