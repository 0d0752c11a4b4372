package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"tabula-backend/internal/config"
	llmHandlers "tabula-backend/internal/llm_handlers"
	"tabula-backend/internal/tabula/agents"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	client, err := llmHandlers.NewClient(ctx, cfg.LLM(cfg.ChatModel))
	if err != nil {
		log.Fatalf("Failed to initialize LLM client (%s): %v", cfg.Provider, err)
	}

	if err := agents.NewSimpleAgent(client).Run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
