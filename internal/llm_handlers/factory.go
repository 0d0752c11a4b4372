package llmHandlers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

type Provider string

const (
	ProviderOpenAI          Provider = "openai" // openai / groq / any OpenAI-compatible API
	ProviderGemini          Provider = "gemini"
	ProviderVertexAnthropic Provider = "vertex_anthropic"
)

type Config struct {
	Provider    Provider
	Model       string
	Temperature float64

	// OpenAI-compatible and Gemini
	APIKey  string
	BaseURL string

	// Vertex AI
	ProjectID                 string
	Location                  string
	ServiceAccountCredentials string // base64 encoded service account JSON
}

// New builds the model for cfg.Provider. Every call made through the returned
// model uses cfg.Temperature, whatever the caller asks for.
func New(ctx context.Context, cfg Config) (llms.Model, error) {
	var (
		model llms.Model
		err   error
	)

	switch cfg.Provider {
	case "", ProviderOpenAI:
		model, err = NewOpenAIModel(cfg)
	case ProviderGemini:
		model, err = NewGenaiGeminiModel(ctx, cfg)
	case ProviderVertexAnthropic:
		model, err = NewVertexAnthropicModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithTemperature(model, cfg.Temperature), nil
}

// NewClient is New wrapped as a chat Client.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	model, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewLangChainClient(model), nil
}
