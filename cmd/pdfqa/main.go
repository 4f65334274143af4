// Command pdfqa answers questions about a PDF from a local vector index.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/pdfqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/pdfqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfqa/internal/adapters/driven/index"
	"github.com/custodia-labs/pdfqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/pdfqa/internal/core/services"
	"github.com/custodia-labs/pdfqa/internal/logger"
	"github.com/custodia-labs/pdfqa/internal/normalisers/pdf"
	"github.com/custodia-labs/pdfqa/internal/postprocessors/chunker"
)

// version is set via -ldflags at release time.
var version = "dev"

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func bootstrap(configDir string, withPipeline bool) (*cli.Services, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(store, ai.NewConfigValidator())
	if !withPipeline {
		return &cli.Services{Settings: settingsService}, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		return nil, err
	}

	aiServices, err := ai.Init(*settings)
	if err != nil {
		return nil, err
	}
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		aiServices.Close()
		return nil, err
	}

	chunks := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	repo := index.NewRepository(index.WithCompression(settings.Index.Compress))

	indexService := services.NewIndexService(
		pdf.New(), chunks, aiServices.EmbeddingService, repo, settings.Index.VectorBackend,
	)

	answerOpts := []services.AnswerOption{
		services.WithTopK(settings.Retrieval.K),
		services.WithTemperature(settings.LLM.Temperature),
		services.WithMaxTokens(settings.LLM.MaxTokens),
	}
	if env := settings.LLM.Provider.APIKeyEnv(); env != "" {
		answerOpts = append(answerOpts, services.WithMissingLLMHint(
			fmt.Sprintf("no LLM provider configured; set %s or run 'pdfqa settings llm'", env)))
	}
	answerService := services.NewAnswerService(aiServices.LLMService, prompts, answerOpts...)

	return &cli.Services{
		Index:    indexService,
		Answer:   answerService,
		Settings: settingsService,
		Close: func() error {
			aiServices.Close()
			return nil
		},
	}, nil
}
