// Package retrieval orchestrates the ingest and query pipeline: chunking,
// embedding, vector indexing, and catalog bookkeeping.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paperstack/askdoc/internal/catalog"
	"github.com/paperstack/askdoc/internal/chunker"
	"github.com/paperstack/askdoc/internal/config"
	"github.com/paperstack/askdoc/internal/embedding"
	"github.com/paperstack/askdoc/internal/extract"
	"github.com/paperstack/askdoc/internal/models"
	"github.com/paperstack/askdoc/internal/vector"
)

// Service ties the chunker, embedder, vector index, and catalog together.
//
// Mutating operations (Ingest, Remove) are serialized behind a single mutex:
// the index's append-then-persist sequence and the catalog write must not
// interleave between two writers. Reads (Query, List) run without that lock;
// the index's own RWMutex makes them safe against a concurrent append.
type Service struct {
	embedder  embedding.Embedder
	index     *vector.FlatIndex
	catalog   *catalog.Catalog
	extractor *extract.Extractor
	chunker   *chunker.Chunker
	cfg       *config.Config
	logger    *zap.Logger

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a logger for ingest/remove events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a retrieval service. The embedder's dimension must match the
// index's dimension; construction fails otherwise rather than letting the
// mismatch surface on the first ingest.
func New(
	emb embedding.Embedder,
	idx *vector.FlatIndex,
	cat *catalog.Catalog,
	extractor *extract.Extractor,
	cfg *config.Config,
	opts ...Option,
) (*Service, error) {
	if emb.Dimensions() != idx.Dimensions() {
		return nil, fmt.Errorf("%w: embedder produces %d dimensions, index expects %d",
			vector.ErrDimensionMismatch, emb.Dimensions(), idx.Dimensions())
	}
	s := &Service{
		embedder:  emb,
		index:     idx,
		catalog:   cat,
		extractor: extractor,
		chunker:   chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap),
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load restores the persisted vector index if present. Corrupt state is
// logged and the service starts from an empty index instead of failing.
func (s *Service) Load() error {
	err := s.index.Load(s.cfg.Storage.VectorIndexPath)
	if err == nil {
		s.logger.Info("vector index loaded",
			zap.String("path", s.cfg.Storage.VectorIndexPath),
			zap.Int("entries", s.index.Size()))
		return nil
	}
	if errors.Is(err, vector.ErrCorruptIndex) {
		s.logger.Warn("persisted index unreadable, starting empty", zap.Error(err))
		return nil
	}
	return err
}

// Ingest chunks, embeds, and indexes a document's raw text, then records it
// in the catalog. The index is persisted before the catalog entry becomes
// durable, so a crash mid-sequence can leave the catalog stale but never
// referencing vectors that were not saved. No rollback is attempted on
// partial failure.
func (s *Service) Ingest(ctx context.Context, rawText, filename, extension string) (models.DocumentMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := chunker.Normalize(rawText)
	chunks := s.chunker.Chunk(text)

	meta := models.DocumentMetadata{
		ID:         uuid.New().String(),
		Filename:   filename,
		Extension:  strings.TrimPrefix(strings.ToLower(extension), "."),
		ChunkCount: len(chunks),
	}

	if len(chunks) > 0 {
		vectors, err := s.embedder.EmbedBatch(ctx, chunks)
		if err != nil {
			return models.DocumentMetadata{}, fmt.Errorf("embed %s: %w", filename, err)
		}
		if err := s.index.Add(vectors, chunks, meta); err != nil {
			return models.DocumentMetadata{}, fmt.Errorf("index %s: %w", filename, err)
		}
		if err := s.index.Save(s.cfg.Storage.VectorIndexPath); err != nil {
			return models.DocumentMetadata{}, fmt.Errorf("persist index after %s: %w", filename, err)
		}
	}

	if err := s.catalog.Record(ctx, meta); err != nil {
		// Vectors are already indexed and saved: the document stays
		// searchable but missing from listings. Accepted inconsistency.
		return models.DocumentMetadata{}, fmt.Errorf("record %s: %w", filename, err)
	}

	s.logger.Info("document ingested",
		zap.String("filename", filename),
		zap.Int("chunks", meta.ChunkCount),
		zap.Int("index_size", s.index.Size()))
	return meta, nil
}

// IngestFile extracts text from file content by extension, then ingests it.
func (s *Service) IngestFile(ctx context.Context, content []byte, filename string) (models.DocumentMetadata, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	text, err := s.extractor.Extract(content, ext)
	if err != nil {
		return models.DocumentMetadata{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	return s.Ingest(ctx, text, filename, ext)
}

// IngestFiles ingests each path independently: one document's failure is
// reported in its IngestReport and never aborts the rest of the batch.
func (s *Service) IngestFiles(ctx context.Context, paths []string) []models.IngestReport {
	reports := make([]models.IngestReport, 0, len(paths))
	for _, path := range paths {
		filename := filepath.Base(path)
		content, err := os.ReadFile(path)
		if err != nil {
			reports = append(reports, models.IngestReport{Filename: filename, Error: err.Error()})
			continue
		}
		meta, err := s.IngestFile(ctx, content, filename)
		if err != nil {
			s.logger.Warn("ingest failed", zap.String("filename", filename), zap.Error(err))
			reports = append(reports, models.IngestReport{Filename: filename, Error: err.Error()})
			continue
		}
		reports = append(reports, models.IngestReport{Filename: filename, Metadata: &meta})
	}
	return reports
}

// Query embeds text as a single query and returns the k nearest chunks with
// their document metadata, ascending by distance, unmodified. k defaults to
// the configured top-k when non-positive.
func (s *Service) Query(ctx context.Context, text string, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		k = s.cfg.Retrieval.DefaultTopK
	}
	queryVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.index.Search(queryVec, k)
}

// Remove deletes all catalog entries for filename and reports whether any
// existed. The vector index is left untouched: the document's chunks remain
// searchable until the index is rebuilt. This catalog/index divergence is
// intended behavior; the remediation for stale vectors is a full rebuild.
func (s *Service) Remove(ctx context.Context, filename string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.catalog.Remove(ctx, filename)
	if err != nil {
		return false, err
	}
	if removed {
		s.logger.Info("document removed from catalog", zap.String("filename", filename))
	}
	return removed, nil
}

// List returns the catalog contents in insertion order.
func (s *Service) List(ctx context.Context) ([]models.DocumentMetadata, error) {
	return s.catalog.List(ctx)
}

// SupportedFormats returns the extensions the extractor can parse.
func (s *Service) SupportedFormats() []string {
	return s.extractor.Supported()
}

// Stats describes the current state of the service.
type Stats struct {
	Documents  int64 `json:"documents"`
	Chunks     int   `json:"chunks"`
	Dimensions int   `json:"dimensions"`
}

// Stats returns document and chunk counts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	docs, err := s.catalog.CountDocuments(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Documents:  docs,
		Chunks:     s.index.Size(),
		Dimensions: s.index.Dimensions(),
	}, nil
}

// Close releases the embedder and catalog.
func (s *Service) Close() error {
	embErr := s.embedder.Close()
	catErr := s.catalog.Close()
	if embErr != nil {
		return embErr
	}
	return catErr
}
