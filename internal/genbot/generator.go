package genbot

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var errEmptyResponse = errors.New("empty response from Gemini API")

// Generator produces raw bot source text from a specification prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API through the Google GenAI SDK.
// The SDK client needs a context to construct, so it is created lazily on
// the first Generate call.
type GeminiGenerator struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGeminiGenerator creates a generator for the given API key and model.
func NewGeminiGenerator(apiKey, model string) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey: apiKey,
		model:  model,
	}
}

// Generate sends one prompt and returns the raw response text. Failures are
// not retried; the caller surfaces them to the user as a failed generation
// attempt.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return "", fmt.Errorf("create Gemini client: %w", err)
		}
		g.client = client
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}
	if result == nil || result.Text() == "" {
		return "", errEmptyResponse
	}
	return result.Text(), nil
}
