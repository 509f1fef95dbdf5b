package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paperstack/askdoc/internal/catalog"
	"github.com/paperstack/askdoc/internal/config"
	"github.com/paperstack/askdoc/internal/embedding"
	"github.com/paperstack/askdoc/internal/extract"
	"github.com/paperstack/askdoc/internal/vector"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Chunking.ChunkSize = 30
	cfg.Chunking.ChunkOverlap = 10

	emb := embedding.NewMockEmbedder(64)
	idx, err := vector.New(emb.Dimensions())
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.Open(cfg.Storage.CatalogPath)
	if err != nil {
		t.Fatal(err)
	}
	svc, err := New(emb, idx, cat, extract.NewExtractor(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_IngestAndQuery(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	meta, err := svc.Ingest(ctx, "The cat sat. The cat ran. The dog slept.", "animals.txt", "txt")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Filename != "animals.txt" || meta.Extension != "txt" {
		t.Errorf("metadata: %+v", meta)
	}
	if meta.ChunkCount < 2 {
		t.Errorf("expected at least 2 chunks with size 30/overlap 10, got %d", meta.ChunkCount)
	}
	if meta.ID == "" {
		t.Error("document ID should be assigned")
	}

	results, err := svc.Query(ctx, "The cat sat.", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Error("results must be in ascending distance order")
		}
	}
	if results[0].Metadata.Filename != "animals.txt" {
		t.Errorf("result metadata: %+v", results[0].Metadata)
	}
}

func TestService_TwoDocumentsTopK(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Document A produces 3 chunks, B produces 2, with size 30 / overlap 10.
	metaA, err := svc.Ingest(ctx, "Alpha bravo charlie delta. Echo foxtrot golf hotel. India juliett kilo lima.", "a.txt", "txt")
	if err != nil {
		t.Fatal(err)
	}
	metaB, err := svc.Ingest(ctx, "Mike november oscar papa. Quebec romeo sierra tango.", "b.txt", "txt")
	if err != nil {
		t.Fatal(err)
	}
	total := metaA.ChunkCount + metaB.ChunkCount
	if total < 4 {
		t.Fatalf("expected several chunks across both documents, got %d", total)
	}

	results, err := svc.Query(ctx, "quebec romeo", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("k=2 should return exactly 2 of the %d stored entries, got %d", total, len(results))
	}
}

func TestService_QueryDefaultK(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Ingest(ctx, "One sentence.", "one.txt", "txt"); err != nil {
		t.Fatal(err)
	}
	results, err := svc.Query(ctx, "sentence", 0)
	if err != nil {
		t.Fatal(err)
	}
	// Fewer entries than the default k: all of them come back.
	if len(results) == 0 {
		t.Error("expected results with default k")
	}
}

func TestService_RemoveLeavesVectorsSearchable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, "Budget figures for the quarter.", "budget.txt", "txt"); err != nil {
		t.Fatal(err)
	}
	removed, err := svc.Remove(ctx, "budget.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("expected removal to report true")
	}

	docs, _ := svc.List(ctx)
	if len(docs) != 0 {
		t.Errorf("catalog should be empty after remove, got %d", len(docs))
	}
	// Vectors intentionally remain searchable after catalog removal.
	results, err := svc.Query(ctx, "budget figures", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Error("vectors should still be searchable after catalog removal")
	}
}

func TestService_RemoveMissing(t *testing.T) {
	svc := newTestService(t)
	removed, err := svc.Remove(context.Background(), "missing.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("removing an unknown filename should report false")
	}
}

func TestService_IngestEmptyText(t *testing.T) {
	svc := newTestService(t)
	meta, err := svc.Ingest(context.Background(), "", "empty.txt", "txt")
	if err != nil {
		t.Fatal(err)
	}
	if meta.ChunkCount != 0 {
		t.Errorf("empty text should produce 0 chunks, got %d", meta.ChunkCount)
	}
	docs, _ := svc.List(context.Background())
	if len(docs) != 1 {
		t.Error("empty document should still be recorded in the catalog")
	}
}

func TestService_IngestFilesBatchIndependence(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.txt")
	if err := os.WriteFile(good, []byte("Valid content here."), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.xyz")
	if err := os.WriteFile(bad, []byte("no parser"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.txt")

	reports := svc.IngestFiles(context.Background(), []string{bad, good, missing})
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if reports[0].Error == "" {
		t.Error("unsupported format should be reported as an error")
	}
	if reports[1].Error != "" || reports[1].Metadata == nil {
		t.Errorf("good file should succeed despite earlier failure: %+v", reports[1])
	}
	if reports[2].Error == "" {
		t.Error("missing file should be reported as an error")
	}
}

func TestService_PersistenceAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	ctx := context.Background()

	build := func() *Service {
		emb := embedding.NewMockEmbedder(32)
		idx, err := vector.New(32)
		if err != nil {
			t.Fatal(err)
		}
		cat, err := catalog.Open(cfg.Storage.CatalogPath)
		if err != nil {
			t.Fatal(err)
		}
		svc, err := New(emb, idx, cat, extract.NewExtractor(), cfg)
		if err != nil {
			t.Fatal(err)
		}
		if err := svc.Load(); err != nil {
			t.Fatal(err)
		}
		return svc
	}

	first := build()
	if _, err := first.Ingest(ctx, "Durable content survives restarts.", "durable.txt", "txt"); err != nil {
		t.Fatal(err)
	}
	before, err := first.Query(ctx, "durable content", 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := build()
	defer second.Close()
	after, err := second.Query(ctx, "durable content", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 1 || after[0].Text != before[0].Text {
		t.Errorf("restored search differs: %+v vs %+v", before, after)
	}
	docs, err := second.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Filename != "durable.txt" {
		t.Errorf("catalog not restored: %+v", docs)
	}
}

func TestService_CorruptIndexStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.VectorIndexPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.Storage.VectorIndexPath, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	emb := embedding.NewMockEmbedder(16)
	idx, _ := vector.New(16)
	cat, err := catalog.Open(cfg.Storage.CatalogPath)
	if err != nil {
		t.Fatal(err)
	}
	svc, err := New(emb, idx, cat, extract.NewExtractor(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	if err := svc.Load(); err != nil {
		t.Fatalf("corrupt state should not fail startup: %v", err)
	}
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Chunks != 0 {
		t.Errorf("expected empty index after corrupt load, got %d chunks", stats.Chunks)
	}
}

func TestService_DimensionMismatchAtConstruction(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	emb := embedding.NewMockEmbedder(64)
	idx, _ := vector.New(32)
	cat, err := catalog.Open(cfg.Storage.CatalogPath)
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()
	if _, err := New(emb, idx, cat, extract.NewExtractor(), cfg); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestService_SupportedFormats(t *testing.T) {
	svc := newTestService(t)
	formats := svc.SupportedFormats()
	if len(formats) == 0 {
		t.Fatal("expected supported formats")
	}
	joined := strings.Join(formats, ",")
	for _, want := range []string{"pdf", "docx", "txt"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in %v", want, formats)
		}
	}
}
