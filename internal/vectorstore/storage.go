package vectorstore

import "healthpaddie/internal/domain"

// Entry is one persisted unit of the index: an embedding vector keyed to its
// originating chunk text and source metadata.
type Entry struct {
	Vector  []float64 `json:"vector"`
	Text    string    `json:"text"`
	Source  string    `json:"source"`
	Ordinal int       `json:"ordinal"`
}

// Storage answers nearest-neighbour queries over indexed entries.
type Storage interface {
	Add(entries []Entry) error
	Search(vector []float64, k int) ([]domain.Passage, error)
	Len() int
}
