// Package chatlog persists completed conversation turns to a JSON file.
// It is a best-effort collaborator: the session logs failures and moves on,
// an unwritable log must never block answer delivery.
package chatlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Record is one completed exchange.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language"`
	User      string    `json:"user"`
	Bot       string    `json:"bot"`
}

// Store appends records to a JSON array file.
type Store struct {
	path string
	now  func() time.Time
}

// New creates a store writing to the given path.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// LogTurn appends one exchange. The whole file is read, appended to and
// rewritten; chat transcripts are small and this keeps the file valid JSON
// for other tools. An unreadable existing file is started over.
func (s *Store) LogTurn(sessionID, language, userText, botText string) error {
	var records []Record
	if data, err := os.ReadFile(s.path); err == nil {
		if err := json.Unmarshal(data, &records); err != nil {
			records = nil
		}
	}

	records = append(records, Record{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Timestamp: s.now().UTC(),
		Language:  language,
		User:      userText,
		Bot:       botText,
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chat log: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chat log dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write chat log: %w", err)
	}
	return nil
}

// Records reads back all logged records, newest last.
func (s *Store) Records() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode chat log: %w", err)
	}
	return records, nil
}
