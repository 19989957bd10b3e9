package domain

// Document is a single source text loaded from the corpus directory.
// It lives only for the duration of an ingestion run.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a bounded segment of a document prepared for embedding.
type Chunk struct {
	DocumentID string
	Source     string
	Text       string
	Ordinal    int
}

// Passage is a retrieved chunk with its similarity score.
type Passage struct {
	Text   string
	Source string
	Score  float64
}

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one utterance in a conversation, ordered by occurrence.
type Turn struct {
	Role string
	Text string
}

// ChatMessage is a role-tagged message sent to the generation service.
type ChatMessage struct {
	Role    string
	Content string
}
