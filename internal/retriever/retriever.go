// Package retriever wraps the vector store with the fixed top-k query
// contract used at answer time.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"healthpaddie/internal/domain"
	"healthpaddie/internal/vectorstore"
)

// DefaultTopK is the number of passages handed to prompt assembly.
const DefaultTopK = 3

// Retriever embeds a question with the same embedder used at ingestion and
// returns the most relevant passage texts.
type Retriever struct {
	embedder domain.Embedder
	store    vectorstore.Storage
	topK     int
}

// New wires a retriever over a loaded store. topK <= 0 falls back to
// DefaultTopK.
func New(embedder domain.Embedder, store vectorstore.Storage, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, store: store, topK: topK}
}

// Retrieve returns the passage texts most relevant to the question, in
// relevance order. An empty question is rejected before any embedding call.
// Answering with an empty context would invite fabricated answers, so an
// unavailable store aborts the question instead of returning nothing.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]string, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if r.store == nil || r.store.Len() == 0 {
		return nil, fmt.Errorf("%w: vector index is empty or not loaded", domain.ErrRetrievalUnavailable)
	}

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %v", domain.ErrRetrievalUnavailable, err)
	}
	passages, err := r.store.Search(vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}

	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	return texts, nil
}
