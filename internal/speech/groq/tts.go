// Package groq provides optional text-to-speech for answers via Groq's
// audio API. Playback failures are cosmetic and never abort the answer
// cycle; the session only logs them.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Defaults for the Groq speech API.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "playai-tts"
	DefaultVoice   = "Aaliyah-PlayAI"
	DefaultTimeout = 60 * time.Second
)

// Config configures the speech client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Voice     string
	Timeout   time.Duration
	// OutputDir receives the generated mp3 files. Empty means the OS temp dir.
	OutputDir string
	// PlayerCommand, when set, is invoked with the mp3 path to play it
	// (for example "mpg123" or "afplay"). Empty disables playback.
	PlayerCommand string
}

// Speaker synthesises answer text to an mp3 file and optionally plays it.
type Speaker struct {
	baseURL string
	apiKey  string
	model   string
	voice   string
	outDir  string
	player  string
	client  *http.Client
}

// New creates a speaker, reading the API key from the configured
// environment variable.
func New(cfg Config) (*Speaker, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "GROQ_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = os.TempDir()
	}
	return &Speaker{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  key,
		model:   cfg.Model,
		voice:   cfg.Voice,
		outDir:  cfg.OutputDir,
		player:  cfg.PlayerCommand,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Speak synthesises the text and, when a player command is configured,
// plays the resulting file.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("speech input is empty")
	}
	path, err := s.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	if s.player == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, s.player, path)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("play audio: %w", err)
	}
	return nil
}

// Synthesize writes the spoken text to an mp3 file and returns its path.
func (s *Speaker) Synthesize(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"model":           s.model,
		"voice":           s.voice,
		"input":           text,
		"response_format": "mp3",
	})
	if err != nil {
		return "", fmt.Errorf("marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("speech request failed with status %s: %s", resp.Status, string(payload))
	}

	path := filepath.Join(s.outDir, "speech.mp3")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create audio file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}
	return path, nil
}
