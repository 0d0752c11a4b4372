package agents

import (
	"context"
	"errors"
	"strings"
	"sync"

	llmHandlers "tabula-backend/internal/llm_handlers"

	"github.com/tmc/langchaingo/llms"
)

type chatCall struct {
	system   string
	messages []llmHandlers.Message
}

type fakeClient struct {
	replies []string
	err     error
	calls   []chatCall
}

func (f *fakeClient) Chat(_ context.Context, systemMessage string, messages []llmHandlers.Message) (string, error) {
	f.calls = append(f.calls, chatCall{system: systemMessage, messages: messages})
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

// scriptedModel returns its responses in order and records every prompt.
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
}

func (m *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if tp, ok := part.(llms.TextContent); ok {
				sb.WriteString(tp.Text)
			}
		}
	}
	m.prompts = append(m.prompts, sb.String())

	if len(m.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: resp}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}
