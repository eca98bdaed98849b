package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GeminiProvider calls Gemini through langchaingo.
type GeminiProvider struct {
	Client llms.Model
}

// NewGeminiProvider creates a Gemini client for model.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not configured")
	}
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{Client: client}, nil
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini" }

// Complete implements Provider. Gemini takes the instructions inline with the prompt.
func (p *GeminiProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, p.Client, system+"\n\n"+prompt)
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini: %w", err)
	}
	if strings.TrimSpace(resp) == "" {
		return "", ErrEmptyCompletion
	}
	return resp, nil
}
