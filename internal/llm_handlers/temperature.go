package llmHandlers

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

type temperatureModel struct {
	llm         llms.Model
	temperature float64
}

// WithTemperature pins the sampling temperature of every call made through m.
func WithTemperature(m llms.Model, temperature float64) llms.Model {
	return &temperatureModel{llm: m, temperature: temperature}
}

func (m *temperatureModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := make([]llms.CallOption, 0, len(options)+1)
	opts = append(opts, options...)
	opts = append(opts, llms.WithTemperature(m.temperature))
	return m.llm.GenerateContent(ctx, messages, opts...)
}

func (m *temperatureModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}
