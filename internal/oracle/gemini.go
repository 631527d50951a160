package oracle

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type GeminiOracle struct {
	apiKey string
	cfg    ClientConfig
	logger *zap.Logger

	once      sync.Once
	client    *genai.Client
	clientErr error
}

func NewGeminiOracle(apiKey string, cfg ClientConfig, logger *zap.Logger) *GeminiOracle {
	return &GeminiOracle{apiKey: apiKey, cfg: cfg, logger: logger}
}

func (o *GeminiOracle) Name() Backend { return BackendGemini }

func (o *GeminiOracle) Classify(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	o.once.Do(func() {
		o.client, o.clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  o.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if o.clientErr != nil {
		return "", &Error{Backend: BackendGemini, Err: o.clientErr}
	}

	temp := float32(o.cfg.Temperature)
	resp, err := o.client.Models.GenerateContent(ctx, o.cfg.GeminiModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     &temp,
			MaxOutputTokens: int32(o.cfg.MaxTokens),
		})
	if err != nil {
		return "", &Error{Backend: BackendGemini, Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &Error{Backend: BackendGemini, Err: errEmptyResponse}
	}
	return text, nil
}
