package oracle

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

var errEmptyResponse = errors.New("no text content in response")

type AnthropicOracle struct {
	client anthropic.Client
	cfg    ClientConfig
	logger *zap.Logger
}

func NewAnthropicOracle(apiKey string, cfg ClientConfig, logger *zap.Logger) *AnthropicOracle {
	return &AnthropicOracle{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		cfg:    cfg,
		logger: logger,
	}
}

func (o *AnthropicOracle) Name() Backend { return BackendAnthropic }

func (o *AnthropicOracle) Classify(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	message, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(o.cfg.AnthropicModel),
		MaxTokens: int64(o.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &Error{Backend: BackendAnthropic, Err: err}
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &Error{Backend: BackendAnthropic, Err: errEmptyResponse}
}
