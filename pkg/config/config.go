package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ConfigError reports an externally supplied value that failed type or range
// validation. Configuration errors are fatal at startup; the batch never runs.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

type Config struct {
	Oracle     OracleConfig     `mapstructure:"oracle"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Priority   PriorityConfig   `mapstructure:"priority"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Review     ReviewConfig     `mapstructure:"review"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Input      InputConfig      `mapstructure:"input"`
	Output     OutputConfig     `mapstructure:"output"`
	Slack      SlackConfig      `mapstructure:"slack"`
	Watch      WatchConfig      `mapstructure:"watch"`
}

// OracleConfig holds the LLM backend settings. API keys are read from the
// environment only and never written back to disk.
type OracleConfig struct {
	GeminiAPIKey    string        `mapstructure:"-"`
	OpenAIAPIKey    string        `mapstructure:"-"`
	AnthropicAPIKey string        `mapstructure:"-"`
	GeminiModel     string        `mapstructure:"gemini_model"`
	OpenAIModel     string        `mapstructure:"openai_model"`
	AnthropicModel  string        `mapstructure:"anthropic_model"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Temperature     float64       `mapstructure:"temperature"`
}

type ClassifierConfig struct {
	// ConfidenceThreshold is the score (0-100) below which the priority
	// analyzer stops escalating a classification.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	// RulesPath optionally overrides the built-in hybrid keyword tables.
	RulesPath string `mapstructure:"rules_path"`
}

type PriorityConfig struct {
	// Weights maps lowercased category names to base weights in [0,1].
	Weights map[string]float64 `mapstructure:"weights"`
}

type ProcessingConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

type ReviewConfig struct {
	// AutoApproveThreshold is advisory only: quality scores above it are
	// flagged in the log, approval stays a human action.
	AutoApproveThreshold float64 `mapstructure:"auto_approve_threshold"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // memory, postgres, sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite file
}

type InputConfig struct {
	ReviewsFile string `mapstructure:"reviews_file"`
	EmailsFile  string `mapstructure:"emails_file"`
}

type OutputConfig struct {
	TicketsFile string `mapstructure:"tickets_file"`
	LogFile     string `mapstructure:"log_file"`
	MetricsFile string `mapstructure:"metrics_file"`
}

type SlackConfig struct {
	Token   string `mapstructure:"-"`
	Channel string `mapstructure:"channel"`
}

type WatchConfig struct {
	// Schedule is a standard 5-field cron expression. Empty disables watch.
	Schedule string `mapstructure:"schedule"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("oracle.gemini_model", "gemini-2.0-flash")
	v.SetDefault("oracle.openai_model", "gpt-4o-mini")
	v.SetDefault("oracle.anthropic_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("oracle.timeout", "20s")
	v.SetDefault("oracle.max_tokens", 300)
	v.SetDefault("oracle.temperature", 0.1)
	v.SetDefault("classifier.confidence_threshold", 50.0)
	v.SetDefault("priority.weights", map[string]float64{
		"bug":             0.9,
		"complaint":       0.6,
		"feature request": 0.5,
		"other":           0.3,
		"praise":          0.2,
		"spam":            0.1,
	})
	v.SetDefault("processing.max_concurrency", 4)
	v.SetDefault("review.auto_approve_threshold", 90.0)
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "feedbacktriage.db")
	v.SetDefault("input.reviews_file", "app_store_reviews.csv")
	v.SetDefault("input.emails_file", "support_emails.csv")
	v.SetDefault("output.tickets_file", "generated_tickets.csv")
	v.SetDefault("output.log_file", "processing_log.csv")
	v.SetDefault("output.metrics_file", "metrics.csv")

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Credentials come from the environment only. Presence is all the
	// selector needs; values are never logged.
	cfg.Oracle.GeminiAPIKey = v.GetString("GEMINI_API_KEY")
	cfg.Oracle.OpenAIAPIKey = v.GetString("OPENAI_API_KEY")
	cfg.Oracle.AnthropicAPIKey = v.GetString("ANTHROPIC_API_KEY")
	cfg.Slack.Token = v.GetString("SLACK_BOT_TOKEN")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks types and ranges at the boundary; any violation is a
// *ConfigError and the batch must not run.
func (c *Config) Validate() error {
	if c.Oracle.Timeout <= 0 {
		return &ConfigError{Field: "oracle.timeout", Reason: "must be positive"}
	}
	if c.Oracle.MaxTokens <= 0 {
		return &ConfigError{Field: "oracle.max_tokens", Reason: "must be positive"}
	}
	if c.Classifier.ConfidenceThreshold < 0 || c.Classifier.ConfidenceThreshold > 100 {
		return &ConfigError{Field: "classifier.confidence_threshold", Reason: "must be in [0,100]"}
	}
	for name, w := range c.Priority.Weights {
		if w < 0 || w > 1 {
			return &ConfigError{
				Field:  "priority.weights." + name,
				Reason: fmt.Sprintf("weight %v outside [0,1]", w),
			}
		}
	}
	if c.Processing.MaxConcurrency < 1 {
		return &ConfigError{Field: "processing.max_concurrency", Reason: "must be at least 1"}
	}
	if c.Review.AutoApproveThreshold < 0 || c.Review.AutoApproveThreshold > 100 {
		return &ConfigError{Field: "review.auto_approve_threshold", Reason: "must be in [0,100]"}
	}
	switch c.Database.Driver {
	case "memory", "postgres", "sqlite":
	default:
		return &ConfigError{Field: "database.driver", Reason: "must be one of memory, postgres, sqlite"}
	}
	return nil
}
