package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds settings for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	Dimension   int    `yaml:"dimension,omitempty"`
}

// HashingEmbedderConfig holds settings for the offline hashing embedder.
type HashingEmbedderConfig struct {
	Dimension int `yaml:"dimension"`
}

// EmbedderConfig selects the embedder. The SAME block drives ingestion and
// query serving so both always share one vector space; the persisted index
// verifies this at load time.
type EmbedderConfig struct {
	Type    string                 `yaml:"type"`
	OpenAI  *OpenAIEmbedderConfig  `yaml:"openai,omitempty"`
	Hashing *HashingEmbedderConfig `yaml:"hashing,omitempty"`
}

// GeneratorConfig configures the chat-completion service.
type GeneratorConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// ChunkerConfig configures document splitting.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrieverConfig configures query-time retrieval.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// HistoryConfig bounds the history view used in prompts.
type HistoryConfig struct {
	Window int `yaml:"window"`
}

// SpeechConfig configures the optional text-to-speech collaborator.
type SpeechConfig struct {
	Enabled       bool   `yaml:"enabled"`
	BaseURL       string `yaml:"base_url"`
	APIKeyEnv     string `yaml:"api_key_env"`
	Model         string `yaml:"model"`
	Voice         string `yaml:"voice"`
	OutputDir     string `yaml:"output_dir"`
	PlayerCommand string `yaml:"player_command"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	CorpusDir   string          `yaml:"corpus_dir"`
	IndexDir    string          `yaml:"index_dir"`
	IntroFile   string          `yaml:"intro_file"`
	ChatLogPath string          `yaml:"chat_log_path"`
	Embedder    EmbedderConfig  `yaml:"embedder"`
	Generator   GeneratorConfig `yaml:"generator"`
	Chunker     ChunkerConfig   `yaml:"chunker"`
	Retriever   RetrieverConfig `yaml:"retriever"`
	History     HistoryConfig   `yaml:"history"`
	Speech      SpeechConfig    `yaml:"speech"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then
// ~/.config/healthpaddie/config.yaml. If neither exists, it writes defaults
// to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "healthpaddie", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		CorpusDir:   "health_data",
		IndexDir:    "vectorstore",
		IntroFile:   "intro_message.txt",
		ChatLogPath: "chat_history.json",
		Embedder: EmbedderConfig{
			Type:    "hashing",
			Hashing: &HashingEmbedderConfig{Dimension: 256},
		},
		Generator: GeneratorConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			APIKeyEnv:   "GROQ_API_KEY",
			Model:       "llama-3.1-8b-instant",
			TimeoutSecs: 60,
			MaxRetries:  3,
		},
		Chunker:   ChunkerConfig{ChunkSize: 800, ChunkOverlap: 100},
		Retriever: RetrieverConfig{TopK: 3},
		History:   HistoryConfig{Window: 10},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.CorpusDir == "" {
		cfg.CorpusDir = def.CorpusDir
	}
	if cfg.IndexDir == "" {
		cfg.IndexDir = def.IndexDir
	}
	if cfg.IntroFile == "" {
		cfg.IntroFile = def.IntroFile
	}
	if cfg.ChatLogPath == "" {
		cfg.ChatLogPath = def.ChatLogPath
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder = def.Embedder
	}
	if cfg.Embedder.Type == "hashing" && cfg.Embedder.Hashing == nil {
		cfg.Embedder.Hashing = &HashingEmbedderConfig{Dimension: 256}
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = def.Generator.BaseURL
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = def.Generator.APIKeyEnv
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = def.Generator.Model
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = def.Generator.TimeoutSecs
	}
	if cfg.Generator.MaxRetries == 0 {
		cfg.Generator.MaxRetries = def.Generator.MaxRetries
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
	}
	if cfg.Chunker.ChunkOverlap == 0 {
		cfg.Chunker.ChunkOverlap = def.Chunker.ChunkOverlap
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = def.Retriever.TopK
	}
	if cfg.History.Window == 0 {
		cfg.History.Window = def.History.Window
	}
}

func validate(cfg *AppConfig) error {
	if cfg.Chunker.ChunkOverlap >= cfg.Chunker.ChunkSize {
		return fmt.Errorf("chunker: chunk_overlap %d must be smaller than chunk_size %d",
			cfg.Chunker.ChunkOverlap, cfg.Chunker.ChunkSize)
	}
	switch cfg.Embedder.Type {
	case "hashing", "openai":
	default:
		return fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI == nil {
		return errors.New("embedder type openai requires an openai section")
	}
	return nil
}
