package llmHandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"tabula-backend/internal/libraries"

	"github.com/tmc/langchaingo/llms"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const anthropicVertexVersion = "vertex-2023-10-16"

// VertexAnthropicModel calls Claude through the Vertex AI rawPredict endpoint.
type VertexAnthropicModel struct {
	httpClient *http.Client
	url        string

	MaxTokens int
}

var _ llms.Model = (*VertexAnthropicModel)(nil)

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	Messages         []claudeMessage `json:"messages"`
	System           string          `json:"system,omitempty"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	StopSequences    []string        `json:"stop_sequences,omitempty"`
	Stream           bool            `json:"stream"`
}

type claudeResponse struct {
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func NewVertexAnthropicModel(ctx context.Context, cfg Config) (*VertexAnthropicModel, error) {
	if cfg.ProjectID == "" || cfg.Location == "" || cfg.Model == "" {
		return nil, fmt.Errorf("vertex anthropic needs project, location and model")
	}

	saJSON, err := libraries.DecodeServiceAccount(cfg.ServiceAccountCredentials)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, saJSON, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, fmt.Errorf("CredentialsFromJSON: %w", err)
	}

	url := fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/anthropic/models/%s:rawPredict",
		cfg.Location, cfg.ProjectID, cfg.Location, cfg.Model,
	)
	return newVertexAnthropicModel(oauth2.NewClient(ctx, creds.TokenSource), url), nil
}

func newVertexAnthropicModel(httpClient *http.Client, url string) *VertexAnthropicModel {
	return &VertexAnthropicModel{
		httpClient: httpClient,
		url:        url,
		MaxTokens:  2048,
	}
}

func (m *VertexAnthropicModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	body := claudeRequest{
		AnthropicVersion: anthropicVertexVersion,
		MaxTokens:        m.MaxTokens,
		Temperature:      opts.Temperature,
		StopSequences:    opts.StopWords,
	}
	if opts.MaxTokens > 0 {
		body.MaxTokens = opts.MaxTokens
	}

	systemParts := []string{}
	for _, msg := range messages {
		text := textOf(msg)
		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			systemParts = append(systemParts, text)
		case llms.ChatMessageTypeAI:
			body.Messages = append(body.Messages, claudeMessage{Role: "assistant", Content: text})
		default:
			body.Messages = append(body.Messages, claudeMessage{Role: "user", Content: text})
		}
	}
	body.System = strings.Join(systemParts, "\n")

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("vertex error %d: %s", resp.StatusCode, buf.String())
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	texts := []string{}
	for _, block := range cr.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("vertex returned no text content")
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content:    strings.Join(texts, "\n\n"),
			StopReason: cr.StopReason,
		}},
	}, nil
}

func (m *VertexAnthropicModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}
