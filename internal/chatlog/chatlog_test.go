package chatlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogTurnAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	s := New(path)

	require.NoError(t, s.LogTurn("sess-1", "English", "How is malaria treated?", "With antimalarial drugs."))
	require.NoError(t, s.LogTurn("sess-1", "English", "Thanks!", "Stay healthy."))

	records, err := s.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "How is malaria treated?", records[0].User)
	assert.Equal(t, "Stay healthy.", records[1].Bot)
	assert.Equal(t, "sess-1", records[1].SessionID)
	assert.NotEmpty(t, records[0].ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestLogTurnStartsOverOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	s := New(path)
	require.NoError(t, s.LogTurn("sess-1", "Hausa", "q", "a"))

	records, err := s.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Hausa", records[0].Language)
}

func TestLogTurnCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chat_history.json")
	s := New(path)
	require.NoError(t, s.LogTurn("sess-1", "Yoruba", "q", "a"))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestRecordsOnMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.json"))
	records, err := s.Records()
	require.NoError(t, err)
	assert.Empty(t, records)
}
