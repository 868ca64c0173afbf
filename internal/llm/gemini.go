package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a Gemini-backed LLM client.
func NewGeminiClient(apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model, timeout: timeout}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string, opts Options) (Response, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr[float32](opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxTokens
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return Response{}, fmt.Errorf("gemini complete: %w", err)
	}

	resp := Response{Content: result.Text(), Model: g.model}
	if result.UsageMetadata != nil {
		total := int(result.UsageMetadata.TotalTokenCount)
		resp.TokensUsed = &total
	}
	return resp, nil
}

func (g *GeminiClient) ProviderName() string { return "gemini" }
