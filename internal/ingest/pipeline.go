// Package ingest builds the persisted vector index from the raw corpus.
// It runs once, offline, before any query traffic; re-running fully
// replaces the previous index.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"healthpaddie/internal/domain"
	"healthpaddie/internal/summarizer"
	"healthpaddie/internal/vectorstore"
	"healthpaddie/internal/vectorstore/memory"
)

// DefaultBatchSize bounds how many chunk texts go into one embedding call.
const DefaultBatchSize = 32

// SkippedDocument records a document the pipeline could not process.
type SkippedDocument struct {
	Path   string
	Reason string
}

// Report is the outcome of one ingestion run.
type Report struct {
	Documents int
	Chunks    int
	Skipped   []SkippedDocument
	Summary   string
	// Written is false when no index was persisted (empty corpus or
	// nothing embeddable); any previous bundle is left untouched then.
	Written bool
}

// Pipeline orchestrates loading, chunking, embedding and persisting.
type Pipeline struct {
	chunker    domain.Chunker
	embedder   domain.Embedder
	summarizer *summarizer.Frequency
	logger     *zap.Logger
	batchSize  int
}

// New wires an ingestion pipeline. batchSize <= 0 falls back to
// DefaultBatchSize.
func New(chunker domain.Chunker, embedder domain.Embedder, logger *zap.Logger, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		chunker:    chunker,
		embedder:   embedder,
		summarizer: summarizer.NewFrequency(),
		logger:     logger,
		batchSize:  batchSize,
	}
}

// Run ingests every document under corpusDir and persists the index bundle
// to indexDir in one atomic save. A document whose embedding fails is
// skipped and reported; the rest of the corpus continues. An empty corpus
// is reported, not an error, and nothing is written.
func (p *Pipeline) Run(ctx context.Context, corpusDir, indexDir string) (*Report, error) {
	loaded, err := loadDocuments(corpusDir)
	if err != nil {
		return nil, err
	}
	report := &Report{Skipped: loaded.skipped}
	if len(loaded.documents) == 0 {
		p.logger.Warn("no documents found in corpus", zap.String("corpus", corpusDir))
		return report, nil
	}

	store, err := memory.New(p.embedder.ModelName(), p.embedder.Dimension())
	if err != nil {
		return nil, err
	}

	var corpusText string
	for _, doc := range loaded.documents {
		chunks, err := p.chunker.Chunk(doc)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedDocument{Path: doc.Path, Reason: err.Error()})
			p.logger.Warn("chunking failed, skipping document", zap.String("path", doc.Path), zap.Error(err))
			continue
		}
		if len(chunks) == 0 {
			report.Skipped = append(report.Skipped, SkippedDocument{Path: doc.Path, Reason: "document is empty"})
			continue
		}
		entries, err := p.embedChunks(ctx, chunks)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedDocument{Path: doc.Path, Reason: err.Error()})
			p.logger.Warn("embedding failed, skipping document", zap.String("path", doc.Path), zap.Error(err))
			continue
		}
		if err := store.Add(entries); err != nil {
			return nil, fmt.Errorf("index %s: %w", doc.Path, err)
		}
		report.Documents++
		report.Chunks += len(chunks)
		corpusText += "\n" + doc.Content
		p.logger.Info("ingested document",
			zap.String("path", doc.Path),
			zap.Int("chunks", len(chunks)))
	}

	if store.Len() == 0 {
		p.logger.Warn("nothing embeddable in corpus, index not written",
			zap.Int("skipped", len(report.Skipped)))
		return report, nil
	}

	if err := store.Save(indexDir); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}
	report.Written = true
	report.Summary = p.summarizer.Summarize(corpusText, 5)
	p.logger.Info("index written",
		zap.String("index", indexDir),
		zap.String("model", p.embedder.ModelName()),
		zap.Int("dimension", p.embedder.Dimension()),
		zap.Int("documents", report.Documents),
		zap.Int("entries", store.Len()))
	return report, nil
}

func (p *Pipeline) embedChunks(ctx context.Context, chunks []domain.Chunk) ([]vectorstore.Entry, error) {
	entries := make([]vectorstore.Entry, 0, len(chunks))
	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Text
		}
		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}
		for i, ch := range batch {
			entries = append(entries, vectorstore.Entry{
				Vector:  vectors[i],
				Text:    ch.Text,
				Source:  ch.Source,
				Ordinal: ch.Ordinal,
			})
		}
	}
	return entries, nil
}
