package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"healthpaddie/internal/chatlog"
	"healthpaddie/internal/config"
	"healthpaddie/internal/domain"
	"healthpaddie/internal/embedding/hashing"
	"healthpaddie/internal/embedding/openai"
	"healthpaddie/internal/generation/groq"
	"healthpaddie/internal/language"
	"healthpaddie/internal/retriever"
	"healthpaddie/internal/session"
	speech "healthpaddie/internal/speech/groq"
	"healthpaddie/internal/tui"
	"healthpaddie/internal/vectorstore/memory"
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

	// Startup precondition: a valid index built with the configured
	// embedder must exist before any question is accepted.
	store, err := memory.Load(cfg.IndexDir, emb.ModelName(), emb.Dimension())
	if err != nil {
		logger.Fatal("vector index unavailable", zap.String("index", cfg.IndexDir), zap.Error(err))
	}

	gen, err := groq.NewClient(groq.Config{
		BaseURL:    cfg.Generator.BaseURL,
		APIKeyEnv:  cfg.Generator.APIKeyEnv,
		Model:      cfg.Generator.Model,
		Timeout:    time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Generator.MaxRetries,
	})
	if err != nil {
		logger.Fatal("generation client init failed", zap.Error(err))
	}

	var speaker domain.Speaker
	if cfg.Speech.Enabled {
		sp, err := speech.New(speech.Config{
			BaseURL:       cfg.Speech.BaseURL,
			APIKeyEnv:     cfg.Speech.APIKeyEnv,
			Model:         cfg.Speech.Model,
			Voice:         cfg.Speech.Voice,
			OutputDir:     cfg.Speech.OutputDir,
			PlayerCommand: cfg.Speech.PlayerCommand,
		})
		if err != nil {
			logger.Warn("speech disabled", zap.Error(err))
		} else {
			speaker = sp
		}
	}

	lang := selectLanguage(cfg.IntroFile)

	sess := session.New(lang, retriever.New(emb, store, cfg.Retriever.TopK), gen,
		chatlog.New(cfg.ChatLogPath), speaker, logger, session.Options{
			HistoryWindow: cfg.History.Window,
			MaxTokens:     cfg.Generator.MaxTokens,
			Temperature:   cfg.Generator.Temperature,
		})

	welcome := fmt.Sprintf("You are now chatting with HealthPaddie in %s.", lang.Name)
	m := tui.New(sess, lang.Name, welcome)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		logger.Fatal("chat ui failed", zap.Error(err))
	}
	fmt.Println("Thank you for using HealthPaddie. Stay healthy!")
}

func selectLanguage(introFile string) language.Option {
	fmt.Println(language.Intro(introFile))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Enter language number (1-4): ")
		if !scanner.Scan() {
			opt, _ := language.Lookup("1")
			return opt
		}
		choice := strings.TrimSpace(scanner.Text())
		if opt, ok := language.Lookup(choice); ok {
			fmt.Printf("You selected: %s\n\n", opt.Name)
			return opt
		}
		fmt.Println("Invalid choice. Please select 1, 2, 3, or 4.")
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
