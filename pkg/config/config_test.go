package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		MongoURI:               DefaultMongoURI,
		MongoDatabaseName:      DefaultMongoDatabaseName,
		MongoConnTimeout:       DefaultMongoConnTimeout,
		Port:                   DefaultPort,
		RateLimitRequests:      DefaultRateLimitRequests,
		RateLimitWindow:        DefaultRateLimitWindow,
		RequestTimeout:         DefaultRequestTimeout,
		IdempotencyTTL:         DefaultIdempotencyTTL,
		MaxRequestSize:         DefaultMaxRequestSize,
		MaxUploadSize:          DefaultMaxUploadSize,
		ReadTimeout:            DefaultReadTimeout,
		WriteTimeout:           DefaultWriteTimeout,
		IdleTimeout:            DefaultIdleTimeout,
		ShutdownTimeout:        DefaultShutdownTimeout,
		ReconcileBaseTimeout:   DefaultReconcileBaseTimeout,
		ReconcilePerRowTimeout: DefaultReconcilePerRowTimeout,
		PartialThreshold:       DefaultPartialThreshold,
		MaxPartialThreshold:    DefaultMaxPartialThreshold,
		PreviewRows:            DefaultPreviewRows,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = "99999" }, wantErr: "Port must be between"},
		{name: "bad mongo scheme", mutate: func(c *Config) { c.MongoURI = "postgres://localhost" }, wantErr: "MongoURI must start with"},
		{name: "zero threshold", mutate: func(c *Config) { c.PartialThreshold = 0 }, wantErr: "PartialThreshold (0)"},
		{name: "threshold above max", mutate: func(c *Config) { c.PartialThreshold = 60 }, wantErr: "PartialThreshold (60)"},
		{name: "upload smaller than request", mutate: func(c *Config) { c.MaxUploadSize = 10 }, wantErr: "MaxUploadSize"},
		{name: "negative per-row timeout", mutate: func(c *Config) { c.ReconcilePerRowTimeout = -time.Second }, wantErr: "ReconcilePerRowTimeout"},
		{name: "zero request timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }, wantErr: "RequestTimeout must be positive"},
		{name: "base timeout above request timeout", mutate: func(c *Config) { c.ReconcileBaseTimeout = 2 * time.Minute }, wantErr: "must not exceed RequestTimeout"},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "LogLevel"},
		{name: "uppercase log level", mutate: func(c *Config) { c.LogLevel = "DEBUG" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_NumbersEveryError(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.MongoDatabaseName = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "1. ") || !strings.Contains(err.Error(), "2. ") {
		t.Errorf("expected numbered errors, got %q", err.Error())
	}
}

func TestReconcileTimeout(t *testing.T) {
	cfg := &Config{ReconcileBaseTimeout: 2 * time.Second, ReconcilePerRowTimeout: time.Millisecond}

	if got := cfg.ReconcileTimeout(0); got != 2*time.Second {
		t.Errorf("expected base timeout, got %s", got)
	}
	if got := cfg.ReconcileTimeout(1000); got != 3*time.Second {
		t.Errorf("expected 3s, got %s", got)
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:secret@db:27017")
	if got != "mongodb://***:***@db:27017" {
		t.Errorf("unexpected redaction: %s", got)
	}
}

func TestNormalizePaginationLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 10}, {-5, 10}, {25, 25}, {500, DefaultPaginationLimit},
	}
	for _, tt := range tests {
		if got := NormalizePaginationLimit(tt.in); got != tt.want {
			t.Errorf("NormalizePaginationLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, []byte("PARTIAL_THRESHOLD=4\nPREVIEW_ROWS=7\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvEnvFile, envFile)
	t.Setenv(EnvPreviewRows, "9")
	t.Setenv(EnvPartialThreshold, "")
	os.Unsetenv(EnvPartialThreshold)

	cfg := Load("test")

	if cfg.PartialThreshold != 4 {
		t.Errorf("expected threshold from env file, got %d", cfg.PartialThreshold)
	}
	if cfg.PreviewRows != 9 {
		t.Errorf("expected process env to win over env file, got %d", cfg.PreviewRows)
	}
}
