package vector

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paperstack/askdoc/internal/models"
)

func testMeta(filename string) models.DocumentMetadata {
	return models.DocumentMetadata{ID: "doc-" + filename, Filename: filename, Extension: "txt", ChunkCount: 1}
}

func TestFlatIndex_AddAndSearch(t *testing.T) {
	idx, err := New(3)
	if err != nil {
		t.Fatal(err)
	}
	vecs := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	texts := []string{"first", "second", "third"}
	if err := idx.Add(vecs, texts, testMeta("a.txt")); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Fatalf("Size=%d, want 3", idx.Size())
	}

	results, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Text != "first" {
		t.Errorf("closest should be %q, got %q", "first", results[0].Text)
	}
	if results[0].Distance != 0 {
		t.Errorf("exact match should have distance 0, got %f", results[0].Distance)
	}
	if results[1].Distance < results[0].Distance {
		t.Error("results should be in ascending distance order")
	}
}

func TestFlatIndex_KLargerThanSize(t *testing.T) {
	idx, _ := New(2)
	_ = idx.Add([][]float32{{1, 0}, {0, 1}}, []string{"a", "b"}, testMeta("x.txt"))
	results, err := idx.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected all 2 entries, got %d", len(results))
	}
}

func TestFlatIndex_EmptySearch(t *testing.T) {
	idx, _ := New(2)
	results, err := idx.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("empty index should return no results, got %d", len(results))
	}
}

func TestFlatIndex_DimensionMismatch(t *testing.T) {
	idx, _ := New(3)
	err := idx.Add([][]float32{{1, 0}}, []string{"short"}, testMeta("a.txt"))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if idx.Size() != 0 {
		t.Error("failed add must not append entries")
	}

	if _, err := idx.Search([]float32{1}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on query, got %v", err)
	}
}

func TestFlatIndex_LengthMismatch(t *testing.T) {
	idx, _ := New(2)
	err := idx.Add([][]float32{{1, 0}}, []string{"a", "b"}, testMeta("a.txt"))
	if err == nil {
		t.Error("expected error for vectors/texts length mismatch")
	}
}

func TestFlatIndex_MetadataReplicated(t *testing.T) {
	idx, _ := New(2)
	meta := models.DocumentMetadata{ID: "d1", Filename: "doc.pdf", Extension: "pdf", ChunkCount: 3}
	vecs := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	if err := idx.Add(vecs, []string{"c0", "c1", "c2"}, meta); err != nil {
		t.Fatal(err)
	}
	results, err := idx.Search([]float32{0.5, 0.5}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(results))
	}
	for i, r := range results {
		if r.Metadata != meta {
			t.Errorf("result %d metadata = %+v, want %+v", i, r.Metadata, meta)
		}
	}
}

func TestFlatIndex_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")

	idx, _ := New(4)
	_ = idx.Add(
		[][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0.5, 0.5, 0, 0}},
		[]string{"alpha", "beta", "gamma"},
		testMeta("roundtrip.txt"),
	)
	query := []float32{0.9, 0.1, 0, 0}
	before, err := idx.Search(query, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	restored, _ := New(4)
	if err := restored.Load(path); err != nil {
		t.Fatal(err)
	}
	if restored.Size() != 3 {
		t.Fatalf("restored size=%d", restored.Size())
	}
	after, err := restored.Search(query, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != len(after) {
		t.Fatalf("result counts differ: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Text != after[i].Text || before[i].Metadata != after[i].Metadata {
			t.Errorf("result %d differs after restore: %+v vs %+v", i, before[i], after[i])
		}
		if before[i].Distance != after[i].Distance {
			t.Errorf("result %d distance differs: %f vs %f", i, before[i].Distance, after[i].Distance)
		}
	}
}

func TestFlatIndex_LoadMissingIsNoop(t *testing.T) {
	idx, _ := New(2)
	if err := idx.Load(filepath.Join(t.TempDir(), "nope.idx")); err != nil {
		t.Errorf("missing files should not error, got %v", err)
	}
	if idx.Size() != 0 {
		t.Error("index should stay empty")
	}
}

func TestFlatIndex_LoadPartialPairIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")

	idx, _ := New(2)
	_ = idx.Add([][]float32{{1, 0}}, []string{"only"}, testMeta("a.txt"))
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path + sidecarSuffix); err != nil {
		t.Fatal(err)
	}

	restored, _ := New(2)
	if err := restored.Load(path); !errors.Is(err, ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex for missing side file, got %v", err)
	}
}

func TestFlatIndex_LoadDimensionMismatchIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")

	idx, _ := New(3)
	_ = idx.Add([][]float32{{1, 0, 0}}, []string{"x"}, testMeta("a.txt"))
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	restored, _ := New(5)
	if err := restored.Load(path); !errors.Is(err, ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex for dimension disagreement, got %v", err)
	}
}

func TestFlatIndex_LoadGarbageIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")
	if err := os.WriteFile(path, []byte{1}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path+sidecarSuffix, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	idx, _ := New(2)
	if err := idx.Load(path); !errors.Is(err, ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex, got %v", err)
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Error("expected error for zero dimensions")
	}
}
