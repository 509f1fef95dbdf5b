// Package config provides configuration loading for the askdoc service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the persisted index and catalog. The vector
// index file, its chunk/metadata side file, and the catalog database live
// together under DataDir.
type StorageConfig struct {
	DataDir         string `yaml:"data_dir"`
	VectorIndexPath string `yaml:"vector_index_path"`
	CatalogPath     string `yaml:"catalog_path"`
}

// EmbeddingConfig holds embedder settings. When UseMock is true (or the
// model path does not exist), the deterministic mock embedder is used instead
// of the ONNX model.
type EmbeddingConfig struct {
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	UseMock    bool   `yaml:"use_mock"`
}

// ChunkingConfig holds the character budgets for chunk splitting.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrievalConfig holds query-side settings.
type RetrievalConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
}

// LLMConfig holds answer-generator settings. The API key is read from the
// environment variable named by APIKeyEnv, never from the config file.
type LLMConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// Load reads and parses the config file at path, applies defaults, and
// expands relative paths against the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DataDir = expandPath(cfg.Storage.DataDir, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Storage.CatalogPath = expandPath(cfg.Storage.CatalogPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// Default returns a config with all defaults applied, rooted at dataDir.
// Used when no config file is given.
func Default(dataDir string) *Config {
	cfg := &Config{}
	cfg.Storage.DataDir = dataDir
	ApplyDefaults(cfg)
	return cfg
}

// expandPath converts path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are left as-is (relative to the working
// directory).
func expandPath(path, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	return path
}
