package language

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	opt, ok := Lookup("1")
	require.True(t, ok)
	assert.Equal(t, "English", opt.Name)
	assert.Equal(t, "en", opt.Code)
	assert.Contains(t, opt.Instruction, "English")

	_, ok = Lookup("9")
	assert.False(t, ok)
}

func TestChoicesOrdered(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3", "4"}, Choices())
}

func TestIntroFallback(t *testing.T) {
	intro := Intro(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Contains(t, intro, "HealthPaddie")
	assert.Contains(t, intro, "1 - English")
}

func TestIntroFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intro.txt")
	require.NoError(t, os.WriteFile(path, []byte("custom intro"), 0o644))
	assert.Equal(t, "custom intro", Intro(path))
}
