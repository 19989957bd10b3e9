package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"healthpaddie/internal/domain"
)

// DefaultDimension is the bucket count used when none is configured.
const DefaultDimension = 256

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Embedder maps text to a fixed-dimension vector by feature-hashing word
// tokens into buckets and L2-normalising the counts. It is a pure function
// of the text and the dimension, so ingestion and query processes always
// agree on the vector space without any external service.
type Embedder struct {
	dimension int
}

// New creates a hashing embedder with the given dimension.
func New(dimension int) (*Embedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimension)
	}
	return &Embedder{dimension: dimension}, nil
}

// ModelName identifies the vector space: the hashing scheme plus dimension.
func (e *Embedder) ModelName() string { return fmt.Sprintf("hashing/%d", e.dimension) }

// Dimension returns the number of hash buckets.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns the hashed token-count vector for the text.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens in input", domain.ErrEmbedding)
	}
	vec := make([]float64, e.dimension)
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimension]++
	}
	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))
	for _, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}
