package oracle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Backend names the classification oracle in use for a batch run.
type Backend string

const (
	BackendGemini    Backend = "gemini"
	BackendOpenAI    Backend = "openai"
	BackendAnthropic Backend = "anthropic"
	BackendHybrid    Backend = "hybrid"
)

// Oracle is the external text-classification contract: one prompt in, one
// text response out. All three LLM providers are driven through this shape.
type Oracle interface {
	Name() Backend
	Classify(ctx context.Context, prompt string) (string, error)
}

// Error wraps any oracle-side failure (timeout, auth, malformed response).
// It is never fatal to a batch: the affected record degrades to hybrid rules.
type Error struct {
	Backend Backend
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Credentials are presence flags plus key material for the selector. Only
// presence is ever logged.
type Credentials struct {
	GeminiKey    string
	OpenAIKey    string
	AnthropicKey string
}

// ClientConfig carries the tunables shared by all oracle clients.
type ClientConfig struct {
	GeminiModel    string
	OpenAIModel    string
	AnthropicModel string
	Timeout        time.Duration
	MaxTokens      int
	Temperature    float64
}

// Selection is the outcome of backend selection for one batch run. Oracle is
// nil when the hybrid rule-based path was chosen.
type Selection struct {
	Backend Backend
	Oracle  Oracle
}

// Select picks the highest-priority backend whose credential is present:
// Gemini > OpenAI > Anthropic > Hybrid. It never fails; hybrid is the
// universal fallback. Presence, not validity, drives the choice; a key that
// turns out to be invalid degrades individual calls at classification time.
func Select(creds Credentials, cfg ClientConfig, logger *zap.Logger) Selection {
	logger.Info("selecting classification backend",
		zap.Bool("gemini_key_present", creds.GeminiKey != ""),
		zap.Bool("openai_key_present", creds.OpenAIKey != ""),
		zap.Bool("anthropic_key_present", creds.AnthropicKey != ""))

	switch {
	case creds.GeminiKey != "":
		logger.Info("backend selected", zap.String("backend", string(BackendGemini)),
			zap.String("reason", "gemini credential present"))
		return Selection{Backend: BackendGemini, Oracle: NewGeminiOracle(creds.GeminiKey, cfg, logger)}
	case creds.OpenAIKey != "":
		logger.Info("backend selected", zap.String("backend", string(BackendOpenAI)),
			zap.String("reason", "openai credential present"))
		return Selection{Backend: BackendOpenAI, Oracle: NewOpenAIOracle(creds.OpenAIKey, cfg, logger)}
	case creds.AnthropicKey != "":
		logger.Info("backend selected", zap.String("backend", string(BackendAnthropic)),
			zap.String("reason", "anthropic credential present"))
		return Selection{Backend: BackendAnthropic, Oracle: NewAnthropicOracle(creds.AnthropicKey, cfg, logger)}
	default:
		logger.Info("backend selected", zap.String("backend", string(BackendHybrid)),
			zap.String("reason", "no oracle credentials, using rule-based classification"))
		return Selection{Backend: BackendHybrid}
	}
}
