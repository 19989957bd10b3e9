package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// The same model identity must be used at ingestion and query time;
// the persisted index records it so mismatches fail at load.
type Embedder interface {
	ModelName() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Chunker splits documents into chunks suitable for embedding.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// GenerateOptions configures a chat-completion request.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

// Generator is the external chat-completion collaborator.
type Generator interface {
	ModelName() string
	Chat(ctx context.Context, messages []ChatMessage, opts GenerateOptions) (string, error)
}

// TurnLogger receives completed conversation turns. Implementations are
// append-only; failures must never block answer delivery.
type TurnLogger interface {
	LogTurn(sessionID, language, userText, botText string) error
}

// Speaker optionally voices the final answer. Failures are cosmetic.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}
