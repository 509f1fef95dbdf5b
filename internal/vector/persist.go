package vector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paperstack/askdoc/internal/models"
)

// sidecarSuffix names the chunk/metadata side file next to the vector file.
// The two files form one persistence unit: both present and mutually
// consistent, or the index is considered corrupt.
const sidecarSuffix = ".meta.json"

// sidecar is the JSON shape of the chunk/metadata side file.
type sidecar struct {
	Texts    []string                  `json:"texts"`
	Metadata []models.DocumentMetadata `json:"metadata"`
}

// Save writes the index to path: a binary vector file (little-endian
// dimension, count, then raw float32 data) plus a JSON side file holding the
// parallel chunk texts and metadata. Parent directories are created as needed.
func (x *FlatIndex) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create vector file: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(x.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(x.vectors))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, v := range x.vectors {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}

	side, err := os.Create(path + sidecarSuffix)
	if err != nil {
		return fmt.Errorf("create side file: %w", err)
	}
	defer side.Close()
	if err := json.NewEncoder(side).Encode(sidecar{Texts: x.texts, Metadata: x.meta}); err != nil {
		return fmt.Errorf("write side file: %w", err)
	}
	return nil
}

// Load replaces the index contents with the persisted state at path. When
// neither file of the pair exists the index is left empty and no error is
// returned. A missing half, unreadable data, a dimension that disagrees with
// the index, or diverging slice lengths all fail with ErrCorruptIndex.
func (x *FlatIndex) Load(path string) error {
	vecExists := fileExists(path)
	sideExists := fileExists(path + sidecarSuffix)
	if !vecExists && !sideExists {
		return nil
	}
	if vecExists != sideExists {
		return fmt.Errorf("%w: persistence pair incomplete at %s", ErrCorruptIndex, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open vector file: %v", ErrCorruptIndex, err)
	}
	defer f.Close()

	var dim, count uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("%w: read dimensions: %v", ErrCorruptIndex, err)
	}
	if int(dim) != x.dimensions {
		return fmt.Errorf("%w: file has dimension %d, index expects %d", ErrCorruptIndex, dim, x.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: read count: %v", ErrCorruptIndex, err)
	}
	vectors := make([][]float32, 0, count)
	for i := uint32(0); i < count; i++ {
		v := make([]float32, x.dimensions)
		if err := binary.Read(f, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("%w: read vector %d: %v", ErrCorruptIndex, i, err)
		}
		vectors = append(vectors, v)
	}

	side, err := os.Open(path + sidecarSuffix)
	if err != nil {
		return fmt.Errorf("%w: open side file: %v", ErrCorruptIndex, err)
	}
	defer side.Close()
	var sc sidecar
	if err := json.NewDecoder(side).Decode(&sc); err != nil {
		return fmt.Errorf("%w: decode side file: %v", ErrCorruptIndex, err)
	}
	if len(sc.Texts) != int(count) || len(sc.Metadata) != int(count) {
		return fmt.Errorf("%w: %d vectors but %d texts and %d metadata records",
			ErrCorruptIndex, count, len(sc.Texts), len(sc.Metadata))
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.vectors = vectors
	x.texts = sc.Texts
	x.meta = sc.Metadata
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
