package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthpaddie/internal/domain"
	"healthpaddie/internal/vectorstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("hashing/64", 3)
	require.NoError(t, err)
	return s
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	s := newTestStore(t)
	err := s.Add([]vectorstore.Entry{{Vector: []float64{1, 0}, Text: "bad"}})
	assert.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestSearchTopKOrder(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add([]vectorstore.Entry{
		{Vector: []float64{1, 0, 0}, Text: "east", Source: "a.txt"},
		{Vector: []float64{0, 1, 0}, Text: "north", Source: "a.txt"},
		{Vector: []float64{0.9, 0.1, 0}, Text: "mostly east", Source: "b.txt"},
		{Vector: []float64{0, 0, 1}, Text: "up", Source: "b.txt"},
	}))

	res, err := s.Search([]float64{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "east", res[0].Text)
	assert.Equal(t, "mostly east", res[1].Text)
	assert.Greater(t, res[0].Score, res[1].Score)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add([]vectorstore.Entry{
		{Vector: []float64{0, 1, 0}, Text: "first"},
		{Vector: []float64{0, 1, 0}, Text: "second"},
		{Vector: []float64{0, 1, 0}, Text: "third"},
	}))

	res, err := s.Search([]float64{0, 2, 0}, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{res[0].Text, res[1].Text, res[2].Text})
}

func TestSearchClampsKToIndexSize(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add([]vectorstore.Entry{
		{Vector: []float64{1, 0, 0}, Text: "only"},
	}))

	res, err := s.Search([]float64{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestSearchNormalisesVectors(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add([]vectorstore.Entry{
		// same direction, wildly different magnitude
		{Vector: []float64{100, 0, 0}, Text: "big east"},
		{Vector: []float64{0, 0.001, 0}, Text: "tiny north"},
	}))

	res, err := s.Search([]float64{0.5, 0, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, "big east", res[0].Text)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vectorstore")
	s := newTestStore(t)
	require.NoError(t, s.Add([]vectorstore.Entry{
		{Vector: []float64{1, 0, 0}, Text: "east", Source: "a.txt", Ordinal: 0},
		{Vector: []float64{0, 1, 0}, Text: "north", Source: "a.txt", Ordinal: 1},
		{Vector: []float64{0.9, 0.1, 0}, Text: "mostly east", Source: "b.txt", Ordinal: 0},
	}))

	query := []float64{0.7, 0.3, 0}
	before, err := s.Search(query, 3)
	require.NoError(t, err)

	require.NoError(t, s.Save(dir))
	loaded, err := Load(dir, "hashing/64", 3)
	require.NoError(t, err)
	require.Equal(t, s.Len(), loaded.Len())

	after, err := loaded.Search(query, 3)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Text, after[i].Text)
		assert.Equal(t, before[i].Source, after[i].Source)
		assert.InDelta(t, before[i].Score, after[i].Score, 1e-12)
	}
}

func TestSaveReplacesPreviousBundle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vectorstore")

	s1 := newTestStore(t)
	require.NoError(t, s1.Add([]vectorstore.Entry{
		{Vector: []float64{1, 0, 0}, Text: "old"},
		{Vector: []float64{0, 1, 0}, Text: "older"},
	}))
	require.NoError(t, s1.Save(dir))

	s2 := newTestStore(t)
	require.NoError(t, s2.Add([]vectorstore.Entry{
		{Vector: []float64{0, 0, 1}, Text: "new"},
	}))
	require.NoError(t, s2.Save(dir))

	loaded, err := Load(dir, "hashing/64", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestLoadMissingBundle(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"), "hashing/64", 3)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestLoadCorruptManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vectorstore")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFile), []byte("{not json"), 0o644))

	_, err := Load(dir, "hashing/64", 3)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestLoadEntryCountMismatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vectorstore")
	s := newTestStore(t)
	require.NoError(t, s.Add([]vectorstore.Entry{{Vector: []float64{1, 0, 0}, Text: "east"}}))
	require.NoError(t, s.Save(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, entriesFile), []byte("[]"), 0o644))

	_, err := Load(dir, "hashing/64", 3)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestLoadDetectsEmbedderMismatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vectorstore")
	s := newTestStore(t)
	require.NoError(t, s.Add([]vectorstore.Entry{{Vector: []float64{1, 0, 0}, Text: "east"}}))
	require.NoError(t, s.Save(dir))

	_, err := Load(dir, "other-model", 3)
	assert.ErrorIs(t, err, domain.ErrIndexCompatibility)

	// same model name but a different dimension is just as fatal
	_, err = Load(dir, "hashing/64", 7)
	assert.ErrorIs(t, err, domain.ErrIndexCompatibility)
	assert.Contains(t, err.Error(), "re-run ingestion")
}
