package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"healthpaddie/internal/chunker"
	"healthpaddie/internal/config"
	"healthpaddie/internal/domain"
	"healthpaddie/internal/embedding/hashing"
	"healthpaddie/internal/embedding/openai"
	"healthpaddie/internal/ingest"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/healthpaddie/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	emb, err := buildEmbedder(cfg)
	if err != nil {
		logger.Fatal("embedder init failed", zap.Error(err))
	}
	ch, err := chunker.New(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	if err != nil {
		logger.Fatal("chunker init failed", zap.Error(err))
	}

	pipeline := ingest.New(ch, emb, logger, 0)
	report, err := pipeline.Run(context.Background(), cfg.CorpusDir, cfg.IndexDir)
	if err != nil {
		logger.Fatal("ingestion failed", zap.Error(err))
	}

	if !report.Written {
		fmt.Printf("No index written: no ingestible documents under %s (add .txt or .pdf files first).\n", cfg.CorpusDir)
		for _, s := range report.Skipped {
			fmt.Printf("  skipped %s: %s\n", s.Path, s.Reason)
		}
		os.Exit(0)
	}

	fmt.Printf("Ingested %d documents into %d chunks; index written to %s (model %s).\n",
		report.Documents, report.Chunks, cfg.IndexDir, emb.ModelName())
	for _, s := range report.Skipped {
		fmt.Printf("  skipped %s: %s\n", s.Path, s.Reason)
	}
	if report.Summary != "" {
		fmt.Printf("\nCorpus summary:\n%s\n", report.Summary)
	}
}

func buildEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "hashing", "":
		dim := hashing.DefaultDimension
		if cfg.Embedder.Hashing != nil && cfg.Embedder.Hashing.Dimension > 0 {
			dim = cfg.Embedder.Hashing.Dimension
		}
		return hashing.New(dim)
	case "openai":
		o := cfg.Embedder.OpenAI
		if o == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:   o.BaseURL,
			APIKeyEnv: o.APIKeyEnv,
			Model:     o.Model,
			Timeout:   time.Duration(o.TimeoutSecs) * time.Second,
			Dimension: o.Dimension,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}
