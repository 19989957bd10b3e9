package memory

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"healthpaddie/internal/domain"
	"healthpaddie/internal/vectorstore"
)

// Store is an in-memory vector index using brute-force cosine similarity.
// Vectors are L2-normalised on insert, so similarity reduces to a dot
// product. Once loaded for query serving the store is read-only; concurrent
// searches are safe.
type Store struct {
	mu        sync.RWMutex
	model     string
	dimension int
	entries   []vectorstore.Entry
}

// New creates an empty store bound to an embedder identity.
func New(model string, dimension int) (*Store, error) {
	if model == "" {
		return nil, errors.New("embedder model name is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimension)
	}
	return &Store{model: model, dimension: dimension}, nil
}

// Model returns the embedder identity the store was built with.
func (s *Store) Model() string { return s.model }

// Dimension returns the vector dimensionality of the store.
func (s *Store) Dimension() int { return s.dimension }

// Len returns the number of indexed entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Add appends entries, normalising their vectors. Entries are never mutated
// afterwards; insertion order is preserved for deterministic tie-breaking.
func (s *Store) Add(entries []vectorstore.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if len(e.Vector) != s.dimension {
			return fmt.Errorf("entry vector has dimension %d, store expects %d", len(e.Vector), s.dimension)
		}
	}
	for _, e := range entries {
		e.Vector = normalize(e.Vector)
		s.entries = append(s.entries, e)
	}
	return nil
}

// Search returns the k entries most similar to the query vector in
// descending score order. Ties keep insertion order. k larger than the
// index is clamped.
func (s *Store) Search(vector []float64, k int) ([]domain.Passage, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, store expects %d", len(vector), s.dimension)
	}
	if k <= 0 {
		return nil, fmt.Errorf("invalid k %d", k)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := normalize(vector)
	idxs := make([]int, len(s.entries))
	scores := make([]float64, len(s.entries))
	for i := range s.entries {
		idxs[i] = i
		scores[i] = dot(s.entries[i].Vector, query)
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })

	if k > len(idxs) {
		k = len(idxs)
	}
	results := make([]domain.Passage, 0, k)
	for _, i := range idxs[:k] {
		e := s.entries[i]
		results = append(results, domain.Passage{Text: e.Text, Source: e.Source, Score: scores[i]})
	}
	return results, nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) []float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		out := make([]float64, len(v))
		copy(out, v)
		return out
	}
	norm := math.Sqrt(sum)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
