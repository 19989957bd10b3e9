package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"healthpaddie/internal/domain"
	"healthpaddie/internal/vectorstore"
)

const formatVersion = 1

const (
	manifestFile = "manifest.json"
	entriesFile  = "entries.json"
)

// manifest makes the bundle self-describing so a mismatched embedder is
// detected at load time instead of silently degrading retrieval.
type manifest struct {
	FormatVersion int       `json:"format_version"`
	Model         string    `json:"model"`
	Dimension     int       `json:"dimension"`
	Entries       int       `json:"entries"`
	BuiltAt       time.Time `json:"built_at"`
}

// Save writes the full index bundle to dir, replacing any previous bundle in
// one rename so a crashed ingestion run never leaves a partial index behind.
func (s *Store) Save(dir string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmp := dir + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return fmt.Errorf("clear staging dir: %w", err)
	}
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}

	m := manifest{
		FormatVersion: formatVersion,
		Model:         s.model,
		Dimension:     s.dimension,
		Entries:       len(s.entries),
		BuiltAt:       time.Now().UTC(),
	}
	if err := writeJSON(filepath.Join(tmp, manifestFile), m); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(tmp, entriesFile), s.entries); err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove previous bundle: %w", err)
	}
	if err := os.Rename(tmp, dir); err != nil {
		return fmt.Errorf("install bundle: %w", err)
	}
	return nil
}

// Load restores an index bundle from dir and verifies it was built with the
// given embedder identity. Missing, unreadable, or mismatched bundles are
// startup precondition failures; there is no fallback to an empty index.
func Load(dir, wantModel string, wantDimension int) (*Store, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run ingestion first)", domain.ErrIndexNotFound, dir)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrIndexNotFound, dir, err)
	}

	var m manifest
	if err := readJSON(filepath.Join(dir, manifestFile), &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrIndexCorrupt, dir, err)
	}
	if m.FormatVersion != formatVersion {
		return nil, fmt.Errorf("%w: %s: unsupported format version %d", domain.ErrIndexCorrupt, dir, m.FormatVersion)
	}
	if m.Model != wantModel || m.Dimension != wantDimension {
		return nil, fmt.Errorf("%w: bundle built with model %q dimension %d, configured embedder is %q dimension %d (re-run ingestion)",
			domain.ErrIndexCompatibility, m.Model, m.Dimension, wantModel, wantDimension)
	}

	var entries []vectorstore.Entry
	if err := readJSON(filepath.Join(dir, entriesFile), &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrIndexCorrupt, dir, err)
	}
	if len(entries) != m.Entries {
		return nil, fmt.Errorf("%w: %s: manifest records %d entries, found %d",
			domain.ErrIndexCorrupt, dir, m.Entries, len(entries))
	}
	for i, e := range entries {
		if len(e.Vector) != m.Dimension {
			return nil, fmt.Errorf("%w: %s: entry %d has dimension %d, manifest says %d",
				domain.ErrIndexCorrupt, dir, i, len(e.Vector), m.Dimension)
		}
	}

	s, err := New(m.Model, m.Dimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrIndexCorrupt, dir, err)
	}
	s.entries = entries
	return s, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
