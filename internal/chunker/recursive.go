package chunker

import (
	"fmt"
	"strconv"

	"healthpaddie/internal/domain"
)

// Default chunking parameters, shared by ingestion and tests.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// RecursiveChunker splits text into overlapping chunks of at most chunkSize
// runes. Cut points prefer paragraph breaks, then line breaks, then sentence
// ends, then word boundaries, falling back to a hard cut so that no chunk
// ever exceeds chunkSize and every rune of the input is covered.
type RecursiveChunker struct {
	chunkSize    int
	chunkOverlap int
}

// New validates the parameters and returns a chunker.
// chunkOverlap must be smaller than chunkSize.
func New(chunkSize, chunkOverlap int) (*RecursiveChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}
	return &RecursiveChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// Chunk splits a document into ordered chunks carrying source metadata.
func (c *RecursiveChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	pieces := c.Split(document.Content)
	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, text := range pieces {
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID + ":" + strconv.Itoa(i),
			Source:     document.Path,
			Text:       text,
			Ordinal:    i,
		})
	}
	return chunks, nil
}

// Split returns the chunk texts for the given input. Empty input produces no
// chunks; input no longer than chunkSize produces exactly one chunk with no
// overlap applied.
func (c *RecursiveChunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.chunkSize {
		return []string{text}
	}

	var pieces []string
	pos := 0
	for {
		end := pos + c.chunkSize
		if end >= len(runes) {
			pieces = append(pieces, string(runes[pos:]))
			return pieces
		}
		cut := c.cutPoint(runes, pos, end)
		pieces = append(pieces, string(runes[pos:cut]))
		pos = cut - c.chunkOverlap
	}
}

// cutPoint looks backward from the hard limit for a natural boundary.
// A candidate must leave the next chunk a strictly later start than this
// one, otherwise splitting would stop making progress; when no such
// boundary exists the hard limit wins.
func (c *RecursiveChunker) cutPoint(runes []rune, start, limit int) int {
	min := start + c.chunkOverlap + 1
	if best := lastBoundary(runes, min, limit, isParagraphBreak); best > 0 {
		return best
	}
	if best := lastBoundary(runes, min, limit, isLineBreak); best > 0 {
		return best
	}
	if best := lastSentenceEnd(runes, min, limit); best > 0 {
		return best
	}
	if best := lastBoundary(runes, min, limit, isSpace); best > 0 {
		return best
	}
	return limit
}

// lastBoundary returns the greatest index in (min, limit] such that the rune
// just before it satisfies pred, or 0 when there is none. Cutting after the
// boundary rune keeps it inside the earlier chunk.
func lastBoundary(runes []rune, min, limit int, pred func([]rune, int) bool) int {
	for i := limit; i >= min; i-- {
		if pred(runes, i-1) {
			return i
		}
	}
	return 0
}

func lastSentenceEnd(runes []rune, min, limit int) int {
	for i := limit; i >= min; i-- {
		r := runes[i-1]
		if (r == '.' || r == '!' || r == '?') && i < len(runes) && isSpace(runes, i) {
			return i
		}
	}
	return 0
}

func isParagraphBreak(runes []rune, i int) bool {
	return i > 0 && runes[i] == '\n' && runes[i-1] == '\n'
}

func isLineBreak(runes []rune, i int) bool {
	return runes[i] == '\n'
}

func isSpace(runes []rune, i int) bool {
	r := runes[i]
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
