// Command analyze runs the extraction pipeline once against files on disk
// and prints the resulting analysis with its derived projections. Useful for
// exercising the pipeline without the HTTP server or the databases.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"finanzaviz/pkg/config"
	"finanzaviz/pkg/core/derive"
	"finanzaviz/pkg/core/llm"
	"finanzaviz/pkg/core/normalize"
	"finanzaviz/pkg/core/pipeline"
	"finanzaviz/pkg/models"
)

func main() {
	godotenv.Load()

	var dreList, balancoList, clientName string
	flag.StringVar(&dreList, "dre", "", "comma-separated income-statement/cash-flow files (required unless -balanco is set)")
	flag.StringVar(&balancoList, "balanco", "", "comma-separated balance-sheet files (optional)")
	flag.StringVar(&clientName, "client", "Empresa Exemplo", "trade name used in the extraction instruction")
	flag.Parse()

	income, err := loadFiles(dreList)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	balance, err := loadFiles(balancoList)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

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

	ctx := context.Background()
	provider, err := llm.NewGeminiProvider(ctx, "")
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	orchestrator := pipeline.NewOrchestrator(provider, nil, nil, pipeline.Config{
		ExtractionModel: cfg.LLM.ExtractionModel,
		ChatModel:       cfg.LLM.ChatModel,
		OfficeName:      cfg.LLM.OfficeName,
		ThinkingBudget:  cfg.LLM.ThinkingBudget,
		Timeout:         timeout,
	})

	client := models.Client{ID: "cli", NomeFantasia: clientName, RazaoSocial: clientName}
	fmt.Printf("Analyzing %d income file(s) and %d balance file(s) for %s...\n", len(income), len(balance), clientName)

	analysis, err := orchestrator.RunAnalysis(ctx, income, balance, client)
	if err != nil {
		fmt.Printf("[FATAL] Analysis failed: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(analysis, "", "  ")
	fmt.Println(string(out))

	fmt.Println("\nAnatomia do Resultado:")
	for _, step := range derive.Anatomy(analysis) {
		marker := ""
		if step.Derived {
			marker = " (aprox.)"
		}
		fmt.Printf("  %-16s %14.2f  %6.1f%%%s\n", step.Label, step.Value, step.Percent, marker)
	}
}

// loadFiles reads a comma-separated path list into ephemeral uploads.
func loadFiles(list string) ([]normalize.UploadedFile, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	var files []normalize.UploadedFile
	for _, path := range strings.Split(list, ",") {
		path = strings.TrimSpace(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(path))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		files = append(files, normalize.NewUploadedFile(filepath.Base(path), mimeType, data))
	}
	return files, nil
}
