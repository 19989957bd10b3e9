package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthpaddie/internal/domain"
)

func TestRecentReturnsLastTurnsInOrder(t *testing.T) {
	h := New()
	for i := 0; i < 25; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		h.Append(role, fmt.Sprintf("turn %d", i))
	}

	recent := h.Recent(10)
	require.Len(t, recent, 10)
	for i, turn := range recent {
		assert.Equal(t, fmt.Sprintf("turn %d", 15+i), turn.Text)
	}
	assert.Equal(t, 25, h.Len())
}

func TestRecentWithFewerTurnsReturnsAll(t *testing.T) {
	h := New()
	h.Append(domain.RoleUser, "hello")
	h.Append(domain.RoleAssistant, "hi there")

	recent := h.Recent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, "hello", recent[0].Text)
	assert.Equal(t, "hi there", recent[1].Text)
}

func TestRecentOnEmptyHistory(t *testing.T) {
	h := New()
	assert.Empty(t, h.Recent(10))
	assert.Empty(t, h.Recent(0))
}

func TestRecentCopiesOutOfStore(t *testing.T) {
	h := New()
	h.Append(domain.RoleUser, "original")
	recent := h.Recent(1)
	recent[0].Text = "mutated"
	assert.Equal(t, "original", h.Recent(1)[0].Text)
}
