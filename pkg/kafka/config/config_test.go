package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")
	t.Setenv(EnvKafkaResultsTopic, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != "localhost:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ResultsTopic != DefaultResultsTopic {
		t.Errorf("ResultsTopic = %s, want %s", cfg.ResultsTopic, DefaultResultsTopic)
	}
	if cfg.ConsumerGroup != DefaultConsumerGroup {
		t.Errorf("ConsumerGroup = %s, want %s", cfg.ConsumerGroup, DefaultConsumerGroup)
	}
	if got := cfg.Consumer.StartOffsetValue(); got != -2 {
		t.Errorf("StartOffsetValue() = %d, want -2 (oldest)", got)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "kafka-1:9092, kafka-2:9092")
	t.Setenv(EnvKafkaRequestsTopic, "recon.requests")
	t.Setenv(EnvKafkaConsumerMaxWait, "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.RequestsTopic != "recon.requests" {
		t.Errorf("RequestsTopic = %s", cfg.RequestsTopic)
	}
	if cfg.Consumer.MaxWait != 2*time.Second {
		t.Errorf("Consumer.MaxWait = %s", cfg.Consumer.MaxWait)
	}
}

func TestLoad_InvalidCompression(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown compression")
	}
}

func TestValidate_DLQMustDiffer(t *testing.T) {
	t.Setenv(EnvKafkaDLQTopic, DefaultRequestsTopic)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DLQ topic equals requests topic")
	}
	if !strings.Contains(err.Error(), "DLQTopic") {
		t.Errorf("error should name DLQTopic, got %v", err)
	}
}

func TestLoad_StartOffset(t *testing.T) {
	t.Setenv(EnvKafkaConsumerStartOffset, "Newest")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Consumer.StartOffsetValue(); got != -1 {
		t.Errorf("StartOffsetValue() = %d, want -1", got)
	}

	t.Setenv(EnvKafkaConsumerStartOffset, "latest")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown start offset")
	}
}

func TestLoad_BlankBrokersAreDropped(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "kafka-1:9092,, ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 1 {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}

	t.Setenv(EnvKafkaBrokers, " , ")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when no broker is left")
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := &Config{
		Brokers:       []string{"localhost:9092"},
		ResultsTopic:  "same",
		RequestsTopic: "same",
		ConsumerGroup: "g",
		Producer:      ProducerConfig{MaxAttempts: 1, BatchTimeout: time.Millisecond, Compression: "gzip"},
		Consumer: ConsumerConfig{
			StartOffset:       OffsetOldest,
			MinBytes:          10,
			MaxBytes:          5,
			MaxWait:           time.Second,
			CommitInterval:    time.Second,
			HeartbeatInterval: time.Minute,
			SessionTimeout:    time.Second,
			RebalanceTimeout:  time.Second,
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"1. ResultsTopic and RequestsTopic", "2. Consumer.MaxBytes", "3. Consumer.HeartbeatInterval"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should contain %q, got %v", want, err)
		}
	}
}
