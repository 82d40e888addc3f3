// Package config loads the application configuration from a TOML file.
// Every field has a working default so a missing file yields a usable
// local setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Vector store backends selectable via the [vector] section.
const (
	BackendArray  = "array"
	BackendQdrant = "qdrant"
)

// Config is the full application configuration.
type Config struct {
	DataDir   string          `toml:"data_dir"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Vector    VectorConfig    `toml:"vector"`
	QueryLog  QueryLogConfig  `toml:"query_log"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider       string `toml:"provider"` // hashed or ollama
	Dimensions     int    `toml:"dimensions"`
	BaseURL        string `toml:"base_url"` // ollama only
	Model          string `toml:"model"`    // ollama only
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (c EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// VectorConfig selects the vector store backend.
type VectorConfig struct {
	Backend    string `toml:"backend"`
	Host       string `toml:"host"` // qdrant only
	Port       int    `toml:"port"`
	Collection string `toml:"collection"`
}

// QueryLogConfig bounds the on-disk query history.
type QueryLogConfig struct {
	MaxEntries int `toml:"max_entries"`
}

// Default returns the configuration used when no file exists.
// The data directory defaults to ~/.netz-rag.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir: filepath.Join(home, ".netz-rag"),
		Embedding: EmbeddingConfig{
			Provider:   "hashed",
			Dimensions: 384,
			BaseURL:        "http://localhost:11434",
			Model:          "nomic-embed-text",
			TimeoutSeconds: 30,
		},
		Vector: VectorConfig{
			Backend:    BackendArray,
			Host:       "localhost",
			Port:       6334,
			Collection: "netz_knowledge",
		},
		QueryLog: QueryLogConfig{
			MaxEntries: 10000,
		},
	}
}

// Load reads the config file at path, overlaying it on the defaults.
// A missing file is not an error. If path is empty the default
// location ~/.netz-rag/config.toml is used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values that would produce a broken setup.
func (c Config) Validate() error {
	switch c.Vector.Backend {
	case BackendArray, BackendQdrant:
	default:
		return fmt.Errorf("unknown vector backend %q (want %s or %s)", c.Vector.Backend, BackendArray, BackendQdrant)
	}

	switch c.Embedding.Provider {
	case "hashed", "ollama":
	default:
		return fmt.Errorf("unknown embedding provider %q (want hashed or ollama)", c.Embedding.Provider)
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.QueryLog.MaxEntries <= 0 {
		return fmt.Errorf("query log max_entries must be positive, got %d", c.QueryLog.MaxEntries)
	}
	return nil
}
