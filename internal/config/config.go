package config

import (
	"fmt"
	"log"

	llmHandlers "tabula-backend/internal/llm_handlers"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Temperature is the sampling temperature used for every remote call.
const Temperature = 0

type Config struct {
	Port string `envconfig:"PORT" default:"3000"`

	Provider      string `envconfig:"LLM_PROVIDER" default:"openai"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	ChatModel     string `envconfig:"CHAT_MODEL" default:"gpt-4.1-mini"`
	AgentModel    string `envconfig:"AGENT_MODEL" default:"gpt-4.1"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// Vertex AI (Claude) and GCS
	GCPProjectID          string `envconfig:"GOOGLE_CLOUD_PROJECT_ID"`
	VertexLocation        string `envconfig:"GOOGLE_CLOUD_VERTEXAI_LOCATION" default:"us-east5"`
	GCPServiceAccountJSON string `envconfig:"GCP_SERVICE_ACCOUNT_CREDENTIALS"`

	DatasetPath        string `envconfig:"DATASET_PATH" default:"./data/salaries_2023.csv"`
	PreviewRows        int    `envconfig:"PREVIEW_ROWS" default:"5"`
	AgentMaxIterations int    `envconfig:"AGENT_MAX_ITERATIONS" default:"15"`

	DBURL     string `envconfig:"DB_URL"`
	DBMigrate bool   `envconfig:"DB_MIGRATE" default:"false"`
}

// Load reads the process environment, optionally seeded from a local .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	return &cfg, nil
}

// LLM returns the provider settings for the given model name.
func (c *Config) LLM(model string) llmHandlers.Config {
	cfg := llmHandlers.Config{
		Provider:    llmHandlers.Provider(c.Provider),
		Model:       model,
		Temperature: Temperature,
	}

	switch cfg.Provider {
	case llmHandlers.ProviderGemini:
		cfg.APIKey = c.GeminiAPIKey
	case llmHandlers.ProviderVertexAnthropic:
		cfg.ProjectID = c.GCPProjectID
		cfg.Location = c.VertexLocation
		cfg.ServiceAccountCredentials = c.GCPServiceAccountJSON
	default:
		cfg.APIKey = c.OpenAIAPIKey
		cfg.BaseURL = c.OpenAIBaseURL
	}
	return cfg
}

// HistoryEnabled reports whether answered questions should be stored.
func (c *Config) HistoryEnabled() bool {
	return c.DBURL != ""
}
