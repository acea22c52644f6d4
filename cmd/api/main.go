package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"finanzaviz/pkg/api"
	"finanzaviz/pkg/config"
	"finanzaviz/pkg/core/llm"
	"finanzaviz/pkg/core/pipeline"
	"finanzaviz/pkg/core/prompt"
	"finanzaviz/pkg/core/registry"
	"finanzaviz/pkg/core/store"
)

func main() {
	godotenv.Load()
	ctx := context.Background()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	// Prompt resources are optional; built-in defaults cover a missing dir.
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
		fmt.Println("  Falling back to built-in prompts")
	}

	if err := store.InitDB(ctx); err != nil {
		fmt.Printf("[FATAL] Database init failed: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	repo := store.NewAnalysisRepo()

	clients, err := registry.NewSQLiteStore(cfg.Storage.RegistryPath)
	if err != nil {
		fmt.Printf("[FATAL] Client registry init failed: %v\n", err)
		os.Exit(1)
	}
	defer clients.Close()

	provider, err := llm.NewGeminiProvider(ctx, "")
	if err != nil {
		fmt.Printf("[FATAL] LLM provider init failed: %v\n", err)
		os.Exit(1)
	}

	orchestrator := pipeline.NewOrchestrator(provider, repo, clients, pipeline.Config{
		ExtractionModel: cfg.LLM.ExtractionModel,
		ChatModel:       cfg.LLM.ChatModel,
		OfficeName:      cfg.LLM.OfficeName,
		ThinkingBudget:  cfg.LLM.ThinkingBudget,
		Timeout:         timeout,
	})

	router := api.NewRouter(orchestrator, repo, clients)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("API server starting on %s...\n", addr)
	fmt.Println("  - POST /api/clients")
	fmt.Println("  - GET  /api/clients")
	fmt.Println("  - POST /api/analysis/run")
	fmt.Println("  - GET  /api/analysis/{clientID}")
	fmt.Println("  - PUT  /api/analysis/{clientID}/notes/{section}")
	fmt.Println("  - POST /api/chat/open")
	fmt.Println("  - POST /api/chat/{sessionID}/ask")

	if err := http.ListenAndServe(addr, router); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
