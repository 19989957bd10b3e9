// Package history keeps the ordered conversation record for one session.
// The underlying store is never truncated; only the view taken for prompt
// assembly is bounded.
package history

import (
	"healthpaddie/internal/domain"
)

// DefaultWindow is the number of turns (not exchanges) shown to the prompt.
const DefaultWindow = 10

// History is an append-only log of conversation turns. It is owned by a
// single session and must not be shared across sessions.
type History struct {
	turns []domain.Turn
}

// New returns an empty history.
func New() *History { return &History{} }

// Append records a turn.
func (h *History) Append(role, text string) {
	h.turns = append(h.turns, domain.Turn{Role: role, Text: text})
}

// Recent returns the last n turns, oldest first. Requesting more turns than
// exist returns all of them.
func (h *History) Recent(n int) []domain.Turn {
	if n <= 0 {
		return nil
	}
	start := len(h.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]domain.Turn, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}

// Len returns the total number of recorded turns.
func (h *History) Len() int { return len(h.turns) }
