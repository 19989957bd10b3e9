package ingest

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"healthpaddie/internal/domain"
)

// loadResult separates readable documents from ones that failed to load so
// the pipeline can report every gap in the corpus.
type loadResult struct {
	documents []domain.Document
	skipped   []SkippedDocument
}

// loadDocuments walks the corpus root recursively and loads every .txt and
// .pdf file. Unreadable files are skipped and reported, never silently
// dropped.
func loadDocuments(root string) (loadResult, error) {
	var result loadResult
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		var content string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt":
			data, err := os.ReadFile(path)
			if err != nil {
				result.skipped = append(result.skipped, SkippedDocument{Path: rel, Reason: err.Error()})
				return nil
			}
			content = string(data)
		case ".pdf":
			text, err := extractPDFText(path)
			if err != nil {
				result.skipped = append(result.skipped, SkippedDocument{Path: rel, Reason: err.Error()})
				return nil
			}
			content = text
		default:
			return nil
		}
		result.documents = append(result.documents, domain.Document{
			ID:      hashString(rel),
			Path:    rel,
			Content: content,
		})
		return nil
	})
	if err != nil {
		return loadResult{}, fmt.Errorf("walk corpus %s: %w", root, err)
	}
	return result, nil
}

func extractPDFText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat pdf: %w", err)
	}
	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// a single bad page should not lose the rest of the document
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("no extractable text in pdf")
	}
	return b.String(), nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
