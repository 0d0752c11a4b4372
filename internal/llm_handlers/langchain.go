package llmHandlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type LangChainClient struct {
	llm llms.Model
}

// NewOpenAIModel creates a langchaingo OpenAI model. BaseURL is optional and
// points the client at Groq or other OpenAI-compatible APIs.
func NewOpenAIModel(cfg Config) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain openai client: %w", err)
	}
	return llm, nil
}

func NewLangChainClient(llm llms.Model) *LangChainClient {
	return &LangChainClient{llm: llm}
}

func (c *LangChainClient) Chat(ctx context.Context, systemMessage string, messages []Message) (string, error) {
	msgContents := make([]llms.MessageContent, 0, len(messages)+1)
	if systemMessage != "" {
		msgContents = append(msgContents, llms.TextParts(llms.ChatMessageTypeSystem, systemMessage))
	}
	for _, m := range messages {
		msgContents = append(msgContents, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	resp, err := c.llm.GenerateContent(ctx, msgContents)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from LLM")
	}

	return resp.Choices[0].Content, nil
}

func chatMessageType(role MessageRole) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// textOf concatenates the text parts of a message.
func textOf(m llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range m.Parts {
		if tp, ok := part.(llms.TextContent); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}
