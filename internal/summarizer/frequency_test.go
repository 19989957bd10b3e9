package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeLimitsSentences(t *testing.T) {
	text := "Malaria kills many people every year. Malaria is spread by mosquitoes. " +
		"Nets stop mosquitoes at night. The weather was nice. Malaria treatment uses antimalarial drugs."
	s := NewFrequency()
	summary := s.Summarize(text, 2)

	count := strings.Count(summary, ".")
	assert.LessOrEqual(t, count, 2)
	assert.Contains(t, strings.ToLower(summary), "malaria")
}

func TestSummarizeShortTextReturnedWhole(t *testing.T) {
	s := NewFrequency()
	assert.Equal(t, "no sentence punctuation here", s.Summarize("  no sentence punctuation here  ", 3))
}

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	text := "Fever is common in malaria. Drink water. Fever with chills needs a malaria test."
	s := NewFrequency()
	summary := s.Summarize(text, 2)
	first := strings.Index(summary, "Fever is common")
	second := strings.Index(summary, "Fever with chills")
	if first >= 0 && second >= 0 {
		assert.Less(t, first, second)
	}
}
