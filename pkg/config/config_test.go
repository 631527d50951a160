package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Oracle.Timeout != 20*time.Second {
		t.Fatalf("timeout = %v", cfg.Oracle.Timeout)
	}
	if cfg.Processing.MaxConcurrency != 4 {
		t.Fatalf("max_concurrency = %d", cfg.Processing.MaxConcurrency)
	}
	if cfg.Database.Driver != "memory" {
		t.Fatalf("driver = %q", cfg.Database.Driver)
	}
	if w := cfg.Priority.Weights["bug"]; w != 0.9 {
		t.Fatalf("bug weight = %v", w)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
oracle:
  timeout: 5s
  max_tokens: 100
processing:
  max_concurrency: 8
database:
  driver: sqlite
  path: /tmp/triage.db
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Oracle.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.Oracle.Timeout)
	}
	if cfg.Processing.MaxConcurrency != 8 {
		t.Fatalf("max_concurrency = %d", cfg.Processing.MaxConcurrency)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "/tmp/triage.db" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	// File values must not disturb unrelated defaults.
	if cfg.Review.AutoApproveThreshold != 90 {
		t.Fatalf("auto_approve_threshold = %v", cfg.Review.AutoApproveThreshold)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative timeout", func(c *Config) { c.Oracle.Timeout = -time.Second }, "oracle.timeout"},
		{"zero max tokens", func(c *Config) { c.Oracle.MaxTokens = 0 }, "oracle.max_tokens"},
		{"threshold above 100", func(c *Config) { c.Classifier.ConfidenceThreshold = 120 }, "classifier.confidence_threshold"},
		{"weight above 1", func(c *Config) { c.Priority.Weights["bug"] = 1.5 }, "priority.weights.bug"},
		{"negative weight", func(c *Config) { c.Priority.Weights["spam"] = -0.1 }, "priority.weights.spam"},
		{"zero concurrency", func(c *Config) { c.Processing.MaxConcurrency = 0 }, "processing.max_concurrency"},
		{"bad driver", func(c *Config) { c.Database.Driver = "oracle-db" }, "database.driver"},
		{"auto approve above 100", func(c *Config) { c.Review.AutoApproveThreshold = 101 }, "review.auto_approve_threshold"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)

			err := cfg.Validate()
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %v, want *ConfigError", err)
			}
			if ce.Field != tc.field {
				t.Fatalf("field = %q, want %q", ce.Field, tc.field)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
