package main

import (
	"context"
	"log"

	"tabula-backend/internal/api"
	"tabula-backend/internal/api/routes"
	v1 "tabula-backend/internal/api/routes/v1"
	"tabula-backend/internal/config"
	"tabula-backend/internal/dataset"
	"tabula-backend/internal/libraries"
	llmHandlers "tabula-backend/internal/llm_handlers"
	"tabula-backend/internal/repo"
	"tabula-backend/internal/tabula/agents"
	"tabula-backend/internal/tabula/workflow"
)

func main() {
	ctx := context.Background()

	// Load environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// gs:// datasets need a storage client
	var opener dataset.ObjectOpener
	if dataset.IsRemote(cfg.DatasetPath) {
		clients, err := libraries.NewClients(ctx, cfg.GCPServiceAccountJSON)
		if err != nil {
			log.Fatalf("failed to init gcp clients: %v", err)
		}
		defer clients.Close()
		opener = clients
	}

	// Load the dataset once, before any question is answered
	ds, err := dataset.LoadFrom(ctx, cfg.DatasetPath, opener)
	if err != nil {
		log.Fatal("Failed to load dataset:", err)
	}
	log.Printf("📊 Loaded %s (%d rows, %d columns)", cfg.DatasetPath, ds.Nrow(), ds.Ncol())

	model, err := llmHandlers.New(ctx, cfg.LLM(cfg.AgentModel))
	if err != nil {
		log.Fatalf("Failed to initialize LLM client (%s): %v", cfg.Provider, err)
	}

	agent := agents.NewDataframeAgent(model, ds,
		agents.WithMaxIterations(cfg.AgentMaxIterations),
		agents.WithPreviewRows(cfg.PreviewRows),
	)
	opts := []workflow.Option{workflow.WithSource(cfg.AgentModel, cfg.DatasetPath)}

	deps := v1.Deps{
		Dataset:     ds,
		PreviewRows: cfg.PreviewRows,
	}

	// Question history is optional
	if cfg.HistoryEnabled() {
		db, err := config.ConnectDB(cfg.DBURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer config.CloseDB(db)

		if err := config.MigrateAllModels(db, cfg.DBMigrate); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}

		deps.Questions = repo.NewQuestionRepository(db)
		opts = append(opts, workflow.WithHistory(deps.Questions))
	}
	deps.Workflow = workflow.NewWorkflow(agent, opts...)

	// Create and configure Fiber app
	app := api.NewServer()

	// Register routes
	routes.Register(app, deps)

	// Start server
	if err := api.StartServer(app, cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
