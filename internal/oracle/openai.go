package oracle

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type OpenAIOracle struct {
	client *openai.Client
	cfg    ClientConfig
	logger *zap.Logger
}

func NewOpenAIOracle(apiKey string, cfg ClientConfig, logger *zap.Logger) *OpenAIOracle {
	return &OpenAIOracle{
		client: openai.NewClient(apiKey),
		cfg:    cfg,
		logger: logger,
	}
}

func (o *OpenAIOracle) Name() Backend { return BackendOpenAI }

func (o *OpenAIOracle) Classify(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.OpenAIModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: float32(o.cfg.Temperature),
	})
	if err != nil {
		return "", &Error{Backend: BackendOpenAI, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Backend: BackendOpenAI, Err: errEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}
