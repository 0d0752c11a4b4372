package llmHandlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

// GenaiGeminiModel implements llms.Model for Gemini via Google AI API
type GenaiGeminiModel struct {
	client  *genai.Client
	modelID string

	MaxTokens int32
}

var _ llms.Model = (*GenaiGeminiModel)(nil)

func NewGenaiGeminiModel(ctx context.Context, cfg Config) (*GenaiGeminiModel, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY and a gemini model id must be set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &GenaiGeminiModel{
		client:    client,
		modelID:   cfg.Model,
		MaxTokens: 2048,
	}, nil
}

// convertMessagesToGenaiContent splits out the system text and maps the rest
// to genai contents ("assistant" becomes "model").
func convertMessagesToGenaiContent(messages []llms.MessageContent) (string, []*genai.Content) {
	systemParts := []string{}
	contents := []*genai.Content{}

	for _, m := range messages {
		text := textOf(m)

		if m.Role == llms.ChatMessageTypeSystem {
			systemParts = append(systemParts, text)
			continue
		}

		roleOut := "user"
		if m.Role == llms.ChatMessageTypeAI {
			roleOut = "model"
		}

		contents = append(contents, &genai.Content{
			Role:  roleOut,
			Parts: []*genai.Part{{Text: text}},
		})
	}

	return strings.Join(systemParts, "\n"), contents
}

func (v *GenaiGeminiModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	systemMessage, contents := convertMessagesToGenaiContent(messages)

	temperature := float32(opts.Temperature)
	maxTokens := v.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = int32(opts.MaxTokens)
	}
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
		StopSequences:   opts.StopWords,
	}

	if systemMessage != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemMessage}},
		}
	}

	resp, err := v.client.Models.GenerateContent(ctx, v.modelID, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini GenerateContent: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content:    sb.String(),
			StopReason: string(cand.FinishReason),
		}},
	}, nil
}

func (v *GenaiGeminiModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, v, prompt, options...)
}
